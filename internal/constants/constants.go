package constants

const (
	Version        = `0.1.0`
	AppName        = `nodian`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `.nodian`
	EnvPrefix      = `NODIAN`

	DefaultRootDir     = `nodian`
	DefaultSessionFile = `open_files.json`
	DefaultDatabase    = `nodian.db`
	DefaultLogLevel    = `INFO`
	DefaultLogFormat   = `text`
	DefaultLogFile     = `nodian.log`
	DefaultPreviewWide = 80
)
