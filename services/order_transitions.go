// services/order_transitions.go
package services

import (
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransitionResult struct {
	OrderID        uint               `json:"orderId"`
	OrderNumber    string             `json:"orderNumber"`
	PreviousStatus entity.OrderStatus `json:"previousStatus"`
	Status         entity.OrderStatus `json:"status"`
	Message        string             `json:"message"`
}

// Transition เปลี่ยนสถานะ order:
// สมาชิกร้าน/superadmin เดินหน้าได้ตาม state machine, ลูกค้าเจ้าของ order ยกเลิกได้อย่างเดียว
func (s *OrderService) Transition(a access.Actor, orderID uint, to entity.OrderStatus, note string) (*TransitionResult, error) {
	if !to.Valid() {
		return nil, apperr.BadRequestf("unknown status %q", to)
	}

	var (
		order *entity.Order
		from  entity.OrderStatus
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Repo.GetOrderTx(tx, orderID)
		if err != nil {
			return apperr.FromDB(err, "Order not found")
		}
		if err := s.Policy.CanAccessTenant(a, o.TenantID); err != nil {
			if o.UserID != a.UserID {
				return err
			}
			if to != entity.StatusCancelled {
				return apperr.Forbiddenf("customers can only cancel their orders")
			}
		}
		if !CanTransition(o.Status, to) {
			return apperr.BadRequestf("cannot change order status from %s to %s", o.Status, to)
		}

		affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, o.Status, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.BadRequestf("order status changed concurrently, reload and retry")
		}
		if err := s.Repo.AddTransition(tx, &entity.OrderTransition{
			OrderID: o.ID, FromStatus: o.Status, ToStatus: to, ActorID: a.UserID, Note: note,
		}); err != nil {
			return err
		}

		if to == entity.StatusCancelled {
			if err := s.restock(tx, o, a.UserID); err != nil {
				return err
			}
		}
		from = o.Status
		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Order not found")
	}

	s.Log.Info("order status changed",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Uint("actor_id", a.UserID),
	)
	s.notifyStatus(order, from, note)

	return &TransitionResult{
		OrderID: order.ID, OrderNumber: order.Number,
		PreviousStatus: from, Status: to,
		Message: notify.StatusMessage(string(to)),
	}, nil
}

// restock คืน stock ของบรรทัดที่ track ไว้ตอนยกเลิก
func (s *OrderService) restock(tx *gorm.DB, o *entity.Order, actorID uint) error {
	for _, line := range o.Items {
		it, err := s.Items.FindByIDTx(tx, line.ItemID)
		if err != nil {
			// สินค้าถูกลบไปแล้ว ไม่มีอะไรให้คืน
			if apperr.Is(err, apperr.NotFound) {
				continue
			}
			return err
		}
		if !it.TrackInventory {
			continue
		}
		if err := s.Items.RestoreStock(tx, it.ID, line.Qty); err != nil {
			return err
		}
		cur, err := s.Items.FindByIDTx(tx, it.ID)
		if err != nil {
			return err
		}
		if err := s.Inventory.AddAdjustment(tx, &entity.InventoryAdjustment{
			PreviousQty: cur.Inventory - line.Qty, NewQty: cur.Inventory,
			Reason: entity.ReasonAdjustment, ItemID: it.ID, TenantID: o.TenantID, ActorID: actorID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) notifyStatus(o *entity.Order, from entity.OrderStatus, note string) {
	if s.Notifier == nil {
		return
	}
	data := notify.StatusData{
		OrderID:           o.ID,
		OrderNumber:       o.Number,
		TenantID:          o.TenantID,
		NewStatus:         string(o.Status),
		PreviousStatus:    string(from),
		EstimatedDelivery: o.EstimatedDelivery,
		UpdateMessage:     note,
	}
	if u, err := s.Users.FindByID(o.UserID); err == nil {
		data.CustomerName = u.FullName()
		data.CustomerEmail = u.Email
	} else {
		s.Log.Warn("status notification without customer", zap.Uint("order_id", o.ID), zap.Error(err))
	}
	if t, err := s.Tenants.FindByID(o.TenantID); err == nil {
		data.MerchantName = t.Name
	}
	s.Notifier.Dispatch(notify.StatusUpdate(data))
}
