package version

const (
	AppName = "Server Imouto"
	Version = "0.1.0"
)
