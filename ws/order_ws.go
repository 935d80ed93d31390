package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/notify"
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// OrderAuthorizer ตรวจว่า actor ดู order นี้ได้ (เจ้าของ / สมาชิกร้าน / superadmin)
type OrderAuthorizer interface {
	CanWatch(a access.Actor, orderID uint) error
}

// OrderHub ศูนย์กลาง websocket สำหรับติดตามสถานะ order
type OrderHub struct {
	clients    map[uint]map[*websocket.Conn]bool // orderID -> set of clients
	broadcast  chan notify.Message
	register   chan Subscription
	unregister chan Subscription
	done       chan struct{}
	mu         sync.Mutex
	log        *zap.Logger
}

// Subscription = 1 connection ที่ติดตาม 1 order
type Subscription struct {
	Conn    *websocket.Conn
	OrderID uint
	UserID  uint
}

func NewOrderHub(log *zap.Logger) *OrderHub {
	return &OrderHub{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		broadcast:  make(chan notify.Message, 64),
		register:   make(chan Subscription),
		unregister: make(chan Subscription),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run คอยฟัง register/unregister/broadcast จนกว่า ctx จะถูกยกเลิก
func (h *OrderHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case sub := <-h.register:
			h.mu.Lock()
			if h.clients[sub.OrderID] == nil {
				h.clients[sub.OrderID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.OrderID][sub.Conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			h.drop(sub.OrderID, sub.Conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients[msg.OrderID] {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Warn("ws write failed", zap.Uint("order_id", msg.OrderID), zap.Error(err))
					h.drop(msg.OrderID, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop ต้องถือ mu อยู่แล้ว
func (h *OrderHub) drop(orderID uint, conn *websocket.Conn) {
	if _, ok := h.clients[orderID][conn]; !ok {
		return
	}
	delete(h.clients[orderID], conn)
	if len(h.clients[orderID]) == 0 {
		delete(h.clients, orderID)
	}
	conn.Close()
}

func (h *OrderHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for orderID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, orderID)
	}
}

// Watchers = จำนวน connection ที่ติดตาม order นี้
func (h *OrderHub) Watchers(orderID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[orderID])
}

// ----- notify.Sink -----

func (h *OrderHub) Name() string { return "websocket" }

func (h *OrderHub) Send(ctx context.Context, msg notify.Message) error {
	if msg.OrderID == 0 {
		return nil
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ----- HTTP -----

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler = WS route /ws/orders/:id (auth ตรวจสิทธิ์ดู order ก่อน upgrade)
func (h *OrderHub) Handler(auth OrderAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := utils.ParamUint(c, "id")
		if orderID == 0 {
			resp.BadRequest(c, "invalid order id")
			return
		}
		actor := utils.CurrentActor(c)
		if err := auth.CanWatch(actor, orderID); err != nil {
			resp.Fail(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("ws upgrade failed", zap.Error(err))
			return
		}

		sub := Subscription{Conn: conn, OrderID: orderID, UserID: actor.UserID}
		select {
		case h.register <- sub:
		case <-h.done:
			conn.Close()
			return
		}
		go h.listen(sub)
	}
}

// listen อ่านจนกว่า client จะปิด (ข้อความจาก client ไม่ได้ใช้)
func (h *OrderHub) listen(sub Subscription) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("ws closed", zap.Uint("order_id", sub.OrderID), zap.Error(err))
			}
			return
		}
	}
}
