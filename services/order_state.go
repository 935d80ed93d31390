package services

import (
	"time"

	"github.com/abdout/souq/entity"
)

// CanTransition: terminal ห้ามเปลี่ยน, cancel ได้ทุกเมื่อก่อน terminal, นอกนั้นต้องเดินหน้าเท่านั้น
func CanTransition(from, to entity.OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() || from == to {
		return false
	}
	if to == entity.StatusCancelled {
		return true
	}
	return to.Step() > from.Step()
}

var statusLabels = map[entity.OrderStatus]string{
	entity.StatusPending:        "Order Placed",
	entity.StatusConfirmed:      "Order Confirmed",
	entity.StatusPreparing:      "Preparing",
	entity.StatusReady:          "Ready",
	entity.StatusOutForDelivery: "Out for Delivery",
	entity.StatusDelivered:      "Delivered",
	entity.StatusCancelled:      "Cancelled",
}

type TimelineStep struct {
	Status    entity.OrderStatus `json:"status"`
	Label     string             `json:"label"`
	Completed bool               `json:"completed"`
	Current   bool               `json:"current"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
}

// timestamps ของแต่ละขั้นเป็นค่าประมาณ (ห่างกัน 15 นาทีจากเวลาสร้าง) ไว้แสดงผลเท่านั้น
const timelineSpacing = 15 * time.Minute

func BuildTimeline(o *entity.Order) []TimelineStep {
	at := func(t time.Time) *time.Time { return &t }

	if o.Status == entity.StatusCancelled {
		return []TimelineStep{
			{Status: entity.StatusPending, Label: statusLabels[entity.StatusPending], Completed: true, Timestamp: at(o.CreatedAt)},
			{Status: entity.StatusCancelled, Label: statusLabels[entity.StatusCancelled], Current: true, Timestamp: at(o.UpdatedAt)},
		}
	}

	current := o.Status.Step()
	steps := make([]TimelineStep, 0, len(entity.FulfillmentFlow))
	for i, st := range entity.FulfillmentFlow {
		step := TimelineStep{Status: st, Label: statusLabels[st]}
		switch {
		case i < current:
			step.Completed = true
			step.Timestamp = at(o.CreatedAt.Add(time.Duration(i) * timelineSpacing))
		case i == current:
			step.Current = true
			step.Completed = st.Terminal() // delivered แล้ว = จบ
			step.Timestamp = at(o.CreatedAt.Add(time.Duration(i) * timelineSpacing))
		}
		steps = append(steps, step)
	}
	return steps
}
