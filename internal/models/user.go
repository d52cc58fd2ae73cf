package models

// User представляет учётную запись панели, которой может быть выдан доступ к серверам.
type User struct {
	ID        int
	Email     string
	Username  string
	RootAdmin bool
}

// Server представляет управляемый сервер, у которого может быть несколько субаккаунтов.
type Server struct {
	ID        int
	UUIDShort string
	Name      string
	OwnerID   int
}
