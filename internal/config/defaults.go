package config

const (
	defaultInputDir        = "input_images"
	defaultOutputDir       = "output_images"
	defaultLogDir          = "~/.local/share/kelvin/logs"
	defaultDecoderBinary   = "dji_irp"
	defaultLibraryPath     = "dji_thermal_sdk/tsdk-core/lib/linux/release_x64"
	defaultProcessingIndex = 0
	defaultExifToolBinary  = "exiftool"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Decoder: Decoder{
			Binary:          defaultDecoderBinary,
			LibraryPath:     defaultLibraryPath,
			ProcessingIndex: defaultProcessingIndex,
		},
		ExifTool: ExifTool{
			Enabled: true,
			Binary:  defaultExifToolBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
