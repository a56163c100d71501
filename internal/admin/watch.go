package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/luma/litecache/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// watch streams every store update to a websocket client as
//
//   {"key":"<key>","value":"<value>"}
//
// The client narrows the stream by sending {"prefix":"<prefix>"}, which is
// acknowledged with the same message once it applies.
func (h *handlers) watch(c *gin.Context) {
	// Listen before the upgrade so no update is missed once the client is
	// connected
	updates, stop := h.store.ListenToUpdates()
	defer stop()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Failed to upgrade watch connection", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.Named("watch").With(zap.String("remoteAddr", conn.RemoteAddr().String()))
	log.Info("Watcher connected")

	prefixes := make(chan string)
	readerDone := make(chan struct{})

	// Only this goroutine reads, only the loop below writes
	go func() {
		defer close(readerDone)

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}

			filter := gjson.GetBytes(payload, "prefix")
			if !filter.Exists() {
				continue
			}

			select {
			case prefixes <- filter.String():
			case <-c.Request.Context().Done():
				return
			}
		}
	}()

	prefix := ""

	for {
		select {
		case <-readerDone:
			log.Info("Watcher disconnected")
			return

		case prefix = <-prefixes:
			ack, err := sjson.SetBytes([]byte(`{}`), "prefix", prefix)
			if err == nil {
				err = conn.WriteMessage(websocket.TextMessage, ack)
			}

			if err != nil {
				log.Warn("Failed to acknowledge filter", zap.Error(err))
				return
			}

		case update, ok := <-updates:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "store closed"))
				return
			}

			if !strings.HasPrefix(update.Key, prefix) {
				continue
			}

			payload, err := encodeUpdate(update)
			if err != nil {
				log.Error("Failed to encode update", zap.String("key", update.Key), zap.Error(err))
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warn("Failed to write update", zap.Error(err))
				return
			}
		}
	}
}

func encodeUpdate(update *storage.Update) ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "key", update.Key)
	if err != nil {
		return nil, err
	}

	return sjson.SetBytes(payload, "value", update.Value)
}
