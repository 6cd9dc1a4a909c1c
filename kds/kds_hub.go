package kds

import (
	"encoding/json"
	"sync"

	"github.com/fairwayfoods/fairway-app/models"
	"github.com/gorilla/websocket"
)

// Event types pushed to kitchen/cashier dashboards.
const (
	EventOrderCreated = "order_created"
	EventOrderUpdate  = "order_update"
	EventNewOrders    = "new_orders"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client (kitchen, cashier, admin).
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderCreated announces a freshly placed order.
func BroadcastOrderCreated(order models.Order) {
	broadcast(Message{
		Event: EventOrderCreated,
		Data:  order,
	})
}

// BroadcastOrderUpdate announces a status change on an existing order.
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// NewOrdersAlert is the payload for the polling delta: how many orders
// appeared since the previous poll and which ones to flag as new.
type NewOrdersAlert struct {
	Count    int    `json:"count"`
	OrderIDs []uint `json:"order_ids"`
}

// BroadcastNewOrders surfaces the "new order" alert with the exact delta.
func BroadcastNewOrders(alert NewOrdersAlert) {
	broadcast(Message{
		Event: EventNewOrders,
		Data:  alert,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Dead connection; drop it on the next read failure.
			continue
		}
	}
}
