package services

import (
	"sync"
	"time"

	"github.com/fairwayfoods/fairway-app/kds"
	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/statemachine"
	"github.com/fairwayfoods/fairway-app/utils"
	"gorm.io/gorm"
)

// OrderMonitor re-counts non-terminal orders (pending or preparing) on a
// fixed interval and pushes a "new orders" alert to the dashboards when the
// count grows between polls. The alert carries exactly the delta, never a
// negative number.
type OrderMonitor struct {
	DB       *gorm.DB
	Interval time.Duration

	stopChan chan struct{}

	mu         sync.Mutex
	inFlight   bool
	prevCount  int64
	primed     bool
	alertCount int
}

func NewOrderMonitor(db *gorm.DB) *OrderMonitor {
	return &OrderMonitor{
		DB:       db,
		Interval: 10 * time.Second,
		stopChan: make(chan struct{}),
	}
}

func (om *OrderMonitor) Start() {
	go func() {
		ticker := time.NewTicker(om.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				om.Poll()
			case <-om.stopChan:
				return
			}
		}
	}()
}

func (om *OrderMonitor) Stop() {
	close(om.stopChan)
}

// Poll runs a single poll cycle. A tick that arrives while the previous
// cycle is still running is skipped, so a slow query can never double-count
// the same delta.
func (om *OrderMonitor) Poll() {
	om.mu.Lock()
	if om.inFlight {
		om.mu.Unlock()
		return
	}
	om.inFlight = true
	om.mu.Unlock()

	defer func() {
		om.mu.Lock()
		om.inFlight = false
		om.mu.Unlock()
	}()

	nonTerminal := []string{statemachine.StatusPending, statemachine.StatusPreparing}

	var count int64
	err := om.DB.Model(&models.Order{}).
		Where("status IN ?", nonTerminal).
		Count(&count).Error
	if err != nil {
		utils.ErrorLogger.Printf("order monitor: count failed: %v", err)
		return
	}

	om.mu.Lock()
	prev := om.prevCount
	primed := om.primed
	om.prevCount = count
	om.primed = true
	om.mu.Unlock()

	delta := count - prev
	if delta < 0 {
		delta = 0
	}

	// The first poll only establishes the baseline.
	if !primed || delta == 0 {
		return
	}

	// Flag the most recent arrivals as "new" until acknowledged.
	var ids []uint
	om.DB.Model(&models.Order{}).
		Where("status IN ?", nonTerminal).
		Order("id desc").
		Limit(int(delta)).
		Pluck("id", &ids)

	om.mu.Lock()
	om.alertCount += int(delta)
	om.mu.Unlock()

	kds.BroadcastNewOrders(kds.NewOrdersAlert{
		Count:    int(delta),
		OrderIDs: ids,
	})
}

// AlertCount returns how many unacknowledged new orders have been flagged.
func (om *OrderMonitor) AlertCount() int {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.alertCount
}

// Acknowledge clears the new-order highlight, e.g. after kitchen staff
// dismiss the alert.
func (om *OrderMonitor) Acknowledge() {
	om.mu.Lock()
	defer om.mu.Unlock()
	om.alertCount = 0
}
