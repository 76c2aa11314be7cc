package mongo

const (
	store            = "broker"
	applicationTable = "application"
	roomTable        = "room"
	transcriptTable  = "transcript"
	notifyLockTable  = "notifyLock"
)

var indexData = []IndexData{
	newIndexData(applicationTable, []string{"ID"}, true, false),
	newIndexData(applicationTable, []string{"jobID", "phone"}, true, false),
	newIndexData(roomTable, []string{"roomName"}, true, false),
	// at most one live room per application - the allocator relies on this
	newIndexData(roomTable, []string{"activeKey"}, true, true),
	newIndexData(roomTable, []string{"applicationID"}, false, false),
	newIndexData(transcriptTable, []string{"interviewID", "sequenceNumber"}, true, false),
	newIndexData(notifyLockTable, []string{"ID"}, false, false),
}
