package conversation

// Keyboard — подсказка транспорту, какую клавиатуру показать под ответом.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardConfirm
	KeyboardIntervals
	KeyboardRemove
)
