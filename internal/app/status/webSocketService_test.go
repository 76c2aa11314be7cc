package status

import (
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
)

func TestHandleConnection(t *testing.T) {
	Convey("Given a mock connection", t, func() {
		ch := make(chan string)
		readCh := make(chan bool)
		fc := make(chan bool)
		conn := &wsConnMock{valueCh: ch, sCh: readCh}
		go func() {
			handleConnection(conn)
			fc <- true
		}()
		Convey("When read fails", func() {
			close(ch)
			<-fc
			Convey("Then the connection is closed", func() {
				So(conn.closedCount, ShouldEqual, 1)
			})
		})

		Convey("When a room subscription arrives", func() {
			ch <- "room1"
			<-readCh
			<-readCh // wait for next read
			c := getConnections("room1")
			Convey("Then the connection is found by room", func() {
				So(c, ShouldContain, conn)
			})
			close(ch)
			<-fc
			Convey("Then maps are empty after close", func() {
				So(len(roomConnectionMap), ShouldEqual, 0)
				So(len(connectionRoomMap), ShouldEqual, 0)
			})
		})

		Convey("When the subscription is switched to another room", func() {
			ch <- "room1"
			ch <- "room2"
			<-readCh
			<-readCh
			<-readCh
			So(getConnections("room1"), ShouldBeEmpty)
			c := getConnections("room2")
			Convey("Then only the last room is subscribed", func() {
				So(c, ShouldContain, conn)
			})
			close(ch)
			<-fc
		})

		Convey("When a second connection subscribes to the same room", func() {
			ch <- "room3"
			ch1 := make(chan string)
			readCh1 := make(chan bool)
			fc1 := make(chan bool)
			conn1 := &wsConnMock{valueCh: ch1, sCh: readCh1}
			go func() {
				handleConnection(conn1)
				fc1 <- true
			}()
			ch1 <- "room3"
			<-readCh1
			<-readCh1 // wait for next read
			c := getConnections("room3")

			Convey("Then both connections are found by room", func() {
				So(c, ShouldContain, conn)
				So(c, ShouldContain, conn1)
			})
			close(ch1)
			close(ch)
			<-fc
			<-fc1
			Convey("Then maps are empty after both close", func() {
				So(getConnections("room3"), ShouldBeEmpty)
				So(len(roomConnectionMap), ShouldEqual, 0)
				So(len(connectionRoomMap), ShouldEqual, 0)
			})
		})
	})
}

func TestGetConnections_ConcurrentWithSubscriptions(t *testing.T) {
	conn := &connFake{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			saveConnection(conn, "roomC")
			deleteConnection(conn)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			for _, c := range getConnections("roomC") {
				c.WriteJSON("")
			}
		}
	}()
	wg.Wait()
	assert.Empty(t, getConnections("roomC"))
	assert.Equal(t, 0, len(roomConnectionMap))
	assert.Equal(t, 0, len(connectionRoomMap))
}

type wsConnMock struct {
	sCh         chan<- bool   // start
	valueCh     <-chan string // value
	closedCount int
}

func (f *wsConnMock) ReadMessage() (messageType int, p []byte, err error) {
	go func() { f.sCh <- true }()
	s, ok := <-f.valueCh
	if ok {
		return 1, []byte(s), nil
	}
	return 1, nil, errors.New("closed")
}

func (f *wsConnMock) Close() error {
	f.closedCount++
	return nil
}

func (f *wsConnMock) WriteJSON(v interface{}) error {
	return nil
}
