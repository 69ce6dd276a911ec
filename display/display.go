package display

// Interface definition for the character displays driven by i2clcd
type Display interface {
	Clear() error
	Close() error
	GetCharsPerLine() int
	PrintLine(line int, text string) error
}
