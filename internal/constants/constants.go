package constants

const (
	// ModelWeightsURL is the fixed URL the super-resolution model weights
	// are downloaded from when absent from the cache.
	ModelWeightsURL = "https://github.com/xinntao/Real-ESRGAN/releases/download/v0.2.5.0/realesr-animevideov3.pth"
	// ModelWeightsFileName is the well-known cache file name for the
	// downloaded weights.
	ModelWeightsFileName = "realesr-animevideov3.pth"
	// DefaultTargetWidth and DefaultTargetHeight are the output
	// resolution used when not overridden on the command line.
	DefaultTargetWidth  = 3840
	DefaultTargetHeight = 2160
	// OutputDirEnvVar names the environment variable carrying the root
	// directory outputs are written under.
	OutputDirEnvVar = "BUGANIME_OUTPUT_DIR"
	// WeightsDownloadTimeoutSeconds bounds the model weights download.
	WeightsDownloadTimeoutSeconds = 600
)
