package libol

// Set by -ldflags "-X github.com/luscis/vpnsim/pkg/libol.Version=..."
var (
	Version = "v1.0.0"
	Date    = ""
)
