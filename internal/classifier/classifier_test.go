package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_TVShows(t *testing.T) {
	tests := []struct {
		name string
		path string
		want TVShow
	}{
		{
			name: "specials with bracket tags",
			path: `C:\[SHiN-gx] Fight Ippatsu! Juuden-chan!! - Special 1 [720x480 AR h.264 FLAC][v2][FF09021F].mkv`,
			want: TVShow{Name: "Fight Ippatsu! Juuden chan!!", Season: 0, Episode: 1},
		},
		{
			name: "OVA",
			path: `C:\[gleam] Kurenai OVA - 01 [OAD][0e73f000].mkv`,
			want: TVShow{Name: "Kurenai", Season: 0, Episode: 1},
		},
		{
			name: "Picture Drama",
			path: `C:\[Jarzka] Saki Picture Drama 1 [480p 10bit DVD FLAC] [BA3CE364].mkv`,
			want: TVShow{Name: "Saki", Season: 0, Episode: 1},
		},
		{
			name: "other standalone with season tag",
			path: `C:\[CoalGuys] K-ON!! S2 - 05 [4B19B10F].mkv`,
			want: TVShow{Name: "K ON!!", Season: 2, Episode: 5},
		},
		{
			name: "other standalone with resolution tag",
			path: `C:\[SubsPlease] RWBY - Hyousetsu Teikoku - 01 (1080p) [FA9C5B87].mkv`,
			want: TVShow{Name: "RWBY Hyousetsu Teikoku", Season: 1, Episode: 1},
		},
		{
			name: "other standalone, title ends in number-like word",
			path: `C:\[SubsPlease] Tokyo Mew Mew New - 01 (1080p) [440C0CD7].mkv`,
			want: TVShow{Name: "Tokyo Mew Mew New", Season: 1, Episode: 1},
		},
		{
			name: "other standalone, long title with extra dashes",
			path: `C:\[Erai-raws] Shin Tennis no Ouji-sama - U-17 World Cup - 01 [1080p][Multiple Subtitle][0341CBE1].mkv`,
			want: TVShow{Name: "Shin Tennis no Ouji sama U 17 World Cup", Season: 1, Episode: 1},
		},
		{
			name: "SxxEyy standalone",
			path: `C:\[Judas] Kaguya-Sama Wa Kokurasetai - S03E07.mkv`,
			want: TVShow{Name: "Kaguya Sama Wa Kokurasetai", Season: 3, Episode: 7},
		},
		{
			name: "other standalone with version suffix",
			path: `C:\[SubsPlease] Rikei ga Koi ni Ochita no de Shoumei shitemita - 08v2 (1080p) [77514EF3].mkv`,
			want: TVShow{Name: "Rikei ga Koi ni Ochita no de Shoumei shitemita", Season: 1, Episode: 8},
		},
		{
			name: "other standalone with season and version suffix",
			path: `C:\[SubsPlease] Rikei ga Koi ni Ochita no de Shoumei shitemita S2 - 08v2 (1080p) [77514EF3].mkv`,
			want: TVShow{Name: "Rikei ga Koi ni Ochita no de Shoumei shitemita", Season: 2, Episode: 8},
		},
		{
			name: "explicit season 0 special via SxxEyy",
			path: `C:\Kaguya-sama - Love is War - S00E01 - (S2O1 OVA).mkv`,
			want: TVShow{Name: "Kaguya sama Love is War", Season: 0, Episode: 1},
		},
		{
			name: "formatted standalone",
			path: `C:\Kaguya-sama - Love is War - S01E06.mkv`,
			want: TVShow{Name: "Kaguya sama Love is War", Season: 1, Episode: 6},
		},
		{
			name: "structured directory",
			path: `C:\Kaguya-sama wa Kokurasetai S03 1080p Dual Audio WEBRip AAC x265-EMBER` +
				`\S03E01-Miko Iino Wants to Be Soothed Kaguya Doesn't Realize Chika Fujiwara Wants to Battle [8933E8C9].mkv`,
			want: TVShow{Name: "Kaguya sama wa Kokurasetai", Season: 3, Episode: 1},
		},
		{
			name: "specials with season tag and OVA marker",
			path: `C:\Kaguya-sama wa Kokurasetai S2 - OVA - 1080p WEB H.264 -NanDesuKa (B-Global).mkv`,
			want: TVShow{Name: "Kaguya sama wa Kokurasetai", Season: 0, Episode: 1},
		},
		{
			name: "other standalone with trailing resolution and group",
			path: `C:\Tensei shitara Ken Deshita - 01 - 2160p WEB H.264 -NanDesKa.mkv`,
			want: TVShow{Name: "Tensei shitara Ken Deshita", Season: 1, Episode: 1},
		},
		{
			name: "formatted standalone with trailing tag",
			path: `C:\Watashi no Shiawase na Kekkon - S01E01 - MULTi.mkv`,
			want: TVShow{Name: "Watashi no Shiawase na Kekkon", Season: 1, Episode: 1},
		},
		{
			name: "other standalone, numbered parent directory",
			path: `C:\Monogatari Series\15. Zoku Owarimonogatari\Zoku Owarimonogatari 01 - Koyomi Reverse, Part 1.mkv`,
			want: TVShow{Name: "Zoku Owarimonogatari", Season: 1, Episode: 1},
		},
		{
			name: "structured directory, nested release folders",
			path: `C:\SNAFU S01-S03+OVA 1080p Dual Audio BDRip 10 bits DD x265-EMBER` +
				`\SNAFU S02+OVA 1080p Dual Audio BDRip 10 bits DD x265-EMBER\Series\S02E01-Nobody Knows Why They Came to the Service Club [7CE95AC0].mkv`,
			want: TVShow{Name: "SNAFU", Season: 2, Episode: 1},
		},
		{
			name: "structured directory, OVA leaf directory",
			path: `C:\SNAFU S01-S03+OVA 1080p Dual Audio BDRip 10 bits DD x265-EMBER` +
				`\SNAFU S02+OVA 1080p Dual Audio BDRip 10 bits DD x265-EMBER\OVA\S02E14 [OVA]-Undoubtedly, Girls Are Made of Sugar, Spice, and Everything Nice [7E9E8A1F].mkv`,
			want: TVShow{Name: "SNAFU", Season: 2, Episode: 14},
		},
		{
			name: "structured directory, P-suffixed season part",
			path: `C:\Mushoku Tensei S01+SP 1080p Dual Audio BDRip 10 bits DD x265-EMBER` +
				`\Mushoku Tensei S01P01 1080p Dual Audio BDRip 10 bits DD x265-EMBER\S01E08-Turning Point 1 V2 [87C2150F].mkv`,
			want: TVShow{Name: "Mushoku Tensei", Season: 1, Episode: 8},
		},
		{
			name: "structured directory, P-suffixed season and SP in parent",
			path: `C:\Mushoku Tensei S02P01+SP 1080p Dual Audio BDRip 10 bits DD+ x265-EMBER\S02E01-The Brokenhearted Mage [AFBB9792].mkv`,
			want: TVShow{Name: "Mushoku Tensei", Season: 2, Episode: 1},
		},
		{
			name: "dot-separated release name",
			path: `C:\A.Terrified.Teacher.at.Ghoul.School!.S01E01.Welcome.to.Hyakki.Academy!.1080p.CR.WEB-DL.JPN.AAC2.0.H.264.MSubs-ToonsHub.mkv`,
			want: TVShow{Name: "A Terrified Teacher at Ghoul School!", Season: 1, Episode: 1},
		},
		{
			name: "dot-separated, structured directory",
			path: `C:\Tohai.-.Ura.Rate.Mahjong.Tohai.Roku.S01E01.1080p.AMZN.WEB-DL.DDP2.0.H.264-Emmid` +
				`\Tohai.-.Ura.Rate.Mahjong.Tohai.Roku.S01E01.1080p.AMZN.WEB-DL.DDP2.0.H.264-Emmid.mkv`,
			want: TVShow{Name: "Tohai Ura Rate Mahjong Tohai Roku", Season: 1, Episode: 1},
		},
		{
			name: "dot-separated under nested plain directories",
			path: `C:\Temp\Torrents\Elegy.for.the.Henchmen.Fist.of.the.North.Star.S01E01.1080p.AMZN.WEB-DL.JPN.DDP2.0.H.264.ESub-ToonsHub.mkv`,
			want: TVShow{Name: "Elegy for the Henchmen Fist of the North Star", Season: 1, Episode: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.path)
			if assert.IsType(t, TVShow{}, got) {
				assert.Equal(t, tt.want, got.(TVShow))
			}
		})
	}
}

func TestClassify_Movie(t *testing.T) {
	got := Classify(`C:\[Coalgirls] Mardock Scramble - The First Compression [BD 1080p][E9D75906].mkv`)
	if assert.IsType(t, Movie{}, got) {
		assert.Equal(t, "Mardock Scramble The First Compression", got.(Movie).Name)
	}
}
