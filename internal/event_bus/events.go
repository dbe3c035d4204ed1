package event_bus

const (
	ProfileUpdated EventType = "profile.updated"
	UserLoggedOut  EventType = "auth.logged_out"
)

type ProfileUpdatedEvent struct {
	UserId int
}

type UserLoggedOutEvent struct {
	UserId int
}
