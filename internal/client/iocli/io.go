package iocli

// IO — терминальный ввод/вывод CLI.
// Выделен в интерфейс, чтобы команды можно было тестировать без терминала.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
