package constants

const (
	AppName = "dragx"
	Version = "v0.3.0"

	// Board constants
	TotalSlots   = 500
	SlotsPerPage = 100
	MaxBis       = 12
	SlotIDPrefix = "slot-"

	// BisDelimiter separates the position from the bis number, both in the
	// position edit input ("12_3") and in exported file names ("lot-12_3.jpg").
	BisDelimiter = "_"

	// PrefixDelimiter separates the user prefix from the position in exported file names
	PrefixDelimiter = "-"

	// Export constants
	DefaultExtension   = "jpg"
	DefaultArchiveName = "photos_organisees.zip"
	CompressionLevel   = 3
	CollisionMarker    = "~"

	// Logger constants
	DefaultLogDir = "~/.local/state/dragx"
	LogFileName   = "dragx.log"
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
)

// ImageExtensions lists the extensions offered by the file picker
var ImageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".heic", ".heif", ".avif",
}
