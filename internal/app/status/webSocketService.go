package status

import (
	"sync"

	"github.com/rolevate/roomgo/internal/pkg/cmdapp"
)

var roomConnectionMap = make(map[string]map[WsConn]bool)
var connectionRoomMap = make(map[WsConn]string)
var mapLock = sync.Mutex{}

//WsConn is interface for websocket handling in status service
type WsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	WriteJSON(v interface{}) error
}

func handleConnection(conn WsConn) {
	defer deleteConnection(conn)
	defer conn.Close()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			cmdapp.Log.Error(err)
			break
		}
		saveConnection(conn, string(message))
	}
	cmdapp.Log.Debugf("handleConnection finish")
}

func deleteConnection(conn WsConn) {
	mapLock.Lock()
	defer mapLock.Unlock()
	deleteConnectionNoSync(conn)
}

func deleteConnectionNoSync(conn WsConn) {
	room, found := connectionRoomMap[conn]
	if found {
		conns, found := roomConnectionMap[room]
		if found {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(roomConnectionMap, room)
			}
		}
	}
	delete(connectionRoomMap, conn)
	cmdapp.Log.Debugf("deleteConnection finish: %d", len(connectionRoomMap))
}

func saveConnection(conn WsConn, room string) {
	mapLock.Lock()
	defer mapLock.Unlock()
	deleteConnectionNoSync(conn)
	connectionRoomMap[conn] = room
	conns, found := roomConnectionMap[room]
	if !found {
		conns = map[WsConn]bool{}
		roomConnectionMap[room] = conns
	}
	conns[conn] = true
	cmdapp.Log.Debugf("saveConnection finish: %d", len(connectionRoomMap))
}

//getConnections returns a snapshot of the room's connections.
//The copy lets the caller iterate while other goroutines subscribe or drop
func getConnections(room string) []WsConn {
	mapLock.Lock()
	defer mapLock.Unlock()
	conns := roomConnectionMap[room]
	res := make([]WsConn, 0, len(conns))
	for c := range conns {
		res = append(res, c)
	}
	return res
}
