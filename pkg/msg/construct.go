package msg

// Wrap returns an Inner message.
func Wrap[I, R any](i I) Msg[I, R] { return Inner[I, R]{i} }

// Incoming returns an IncomingRoute message.
func Incoming[I, R any](r R) Msg[I, R] { return IncomingRoute[I, R]{r} }

// Push returns a NewRoute message.
func Push[I, R any](r R) Msg[I, R] { return NewRoute[I, R]{r} }

// Replace returns a ReplaceRoute message.
func Replace[I, R any](r R) Msg[I, R] { return ReplaceRoute[I, R]{r} }

// PushURL returns a NewURL message.
func PushURL[I, R any](url string) Msg[I, R] { return NewURL[I, R]{url} }

// ReplaceURLMsg returns a ReplaceURL message.
func ReplaceURLMsg[I, R any](url string) Msg[I, R] { return ReplaceURL[I, R]{url} }

// Ready returns a PageReady message.
func Ready[I, R any]() Msg[I, R] { return PageReady[I, R]{} }

// ReloadPage returns a Reload message.
func ReloadPage[I, R any]() Msg[I, R] { return Reload[I, R]{} }

// ShowToastMsg returns a ShowToast message.
func ShowToastMsg[I, R any](t Toast) Msg[I, R] { return ShowToast[I, R]{t} }

// None returns a Noop message.
func None[I, R any]() Msg[I, R] { return Noop[I, R]{} }
