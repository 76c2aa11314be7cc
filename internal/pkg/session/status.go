package session

//Status represents the room lifecycle state
type Status int

const (
	//Created value - room record exists, nobody joined yet
	Created Status = iota + 1
	//Active value - at least one participant was observed
	Active
	//Ended value - terminal, a room never returns from it
	Ended
)

var (
	statusName = map[Status]string{Created: "CREATED", Active: "ACTIVE", Ended: "ENDED"}
	nameStatus = map[string]Status{"CREATED": Created, "ACTIVE": Active, "ENDED": Ended}
)

//Name returns the status string
func Name(st Status) string {
	return statusName[st]
}

//From parses the status string
func From(st string) Status {
	return nameStatus[st]
}

//CanChange tells if a transition is allowed.
//The machine is one way: CREATED -> ACTIVE -> ENDED.
//A repeated join maps to ACTIVE -> ACTIVE and is allowed (idempotent)
func CanChange(from, to Status) bool {
	if from == Ended {
		return false
	}
	if to == Active {
		return from == Created || from == Active
	}
	if to == Ended {
		return from == Created || from == Active
	}
	return false
}
