package calculator

// Messages maps error kinds to user-facing text. Implementations return the
// empty string for kinds they don't know.
type Messages interface {
	Message(k Kind) string
}

// MessageMap is a Messages backed by a map.
type MessageMap map[Kind]string

func (m MessageMap) Message(k Kind) string {
	return m[k]
}

// DefaultMessages holds the built-in message for every Kind.
var DefaultMessages = MessageMap{
	InvalidInput:     "Invalid input",
	ExpressionParse:  "Invalid expression",
	DivisionByZero:   "Cannot divide by zero",
	InvalidOperation: "Invalid operation",
}

// MessageFor returns the text to show a user for err. It asks m first, then
// DefaultMessages. Errors that did not come from Evaluate are shown as-is.
// m may be nil.
func MessageFor(err error, m Messages) string {
	if err == nil {
		return ""
	}
	k, ok := KindOf(err)
	if !ok {
		return err.Error()
	}
	if m != nil {
		if s := m.Message(k); s != "" {
			return s
		}
	}
	if s := DefaultMessages.Message(k); s != "" {
		return s
	}
	return err.Error()
}
