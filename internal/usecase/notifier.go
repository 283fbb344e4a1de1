package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/mailer"
	"rental-booking/pkg/messaging"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RefundNotice describes a refund transition that already committed.
type RefundNotice struct {
	Refund   *entity.RefundRequest
	Booking  *entity.Booking
	Property *entity.Property
	From     *entity.RefundStatus
	ActorID  uuid.UUID
	At       time.Time
}

// Notifier fans out a committed transition. It never fails the caller.
type Notifier interface {
	RefundChanged(ctx context.Context, notice RefundNotice)
}

type refundNotifier struct {
	repo         *repository.Repository
	mail         mailer.Sender
	publisher    messaging.Publisher
	emailTimeout time.Duration
	maxParallel  int
	log          *zap.Logger
}

func NewNotifier(
	repo *repository.Repository,
	mail mailer.Sender,
	publisher messaging.Publisher,
	emailTimeout time.Duration,
	log *zap.Logger,
) Notifier {
	if emailTimeout <= 0 {
		emailTimeout = 10 * time.Second
	}
	return &refundNotifier{
		repo:         repo,
		mail:         mail,
		publisher:    publisher,
		emailTimeout: emailTimeout,
		maxParallel:  4,
		log:          log.With(zap.String("service", "notifier")),
	}
}

type recipient struct {
	userID uuid.UUID
	kind   entity.NotificationKind
}

func (n *refundNotifier) RefundChanged(ctx context.Context, notice RefundNotice) {
	// the transition is committed; a client hanging up must not stop delivery
	ctx = context.WithoutCancel(ctx)

	recipients := n.recipients(ctx, notice)

	n.storeNotifications(ctx, notice, recipients)
	n.sendEmails(ctx, notice, recipients)
	n.publish(ctx, notice)
}

// recipients is the guest, plus every property admin on requested and failed.
func (n *refundNotifier) recipients(ctx context.Context, notice RefundNotice) []recipient {
	out := []recipient{{userID: notice.Refund.GuestID, kind: entity.NotificationRefundStatus}}

	switch notice.Refund.Status {
	case entity.RefundStatusRequested, entity.RefundStatusFailed:
	default:
		return out
	}

	adminIDs, err := n.repo.Property.FindAdminIDs(ctx, notice.Booking.PropertyID)
	if err != nil {
		n.log.Error("Failed to load property admins",
			zap.Error(err),
			zap.String("property_id", notice.Booking.PropertyID.String()),
		)
		return out
	}

	seen := map[uuid.UUID]bool{notice.Refund.GuestID: true}
	for _, id := range adminIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, recipient{userID: id, kind: entity.NotificationRefundAlert})
	}
	return out
}

func (n *refundNotifier) storeNotifications(ctx context.Context, notice RefundNotice, recipients []recipient) {
	refundID := notice.Refund.ID
	rows := make([]*entity.Notification, 0, len(recipients))
	for _, rc := range recipients {
		title, body := notificationText(notice, rc.kind)
		rows = append(rows, &entity.Notification{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: notice.At},
			UserID:     rc.userID,
			RefundID:   &refundID,
			Kind:       rc.kind,
			Title:      title,
			Body:       body,
		})
	}

	if err := n.repo.Notification.CreateBatch(ctx, rows); err != nil {
		n.log.Error("Failed to store notifications",
			zap.Error(err),
			zap.String("refund_id", refundID.String()),
		)
	}
}

func (n *refundNotifier) sendEmails(ctx context.Context, notice RefundNotice, recipients []recipient) {
	ids := make([]uuid.UUID, 0, len(recipients))
	for _, rc := range recipients {
		ids = append(ids, rc.userID)
	}

	users, err := n.repo.User.FindByIDs(ctx, ids)
	if err != nil {
		n.log.Error("Failed to load email recipients", zap.Error(err))
		return
	}

	data := emailData(notice)
	key := "refund_" + string(notice.Refund.Status)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.maxParallel)

	for _, user := range users {
		if user.Email == "" {
			continue
		}

		msg := mailer.Message{
			To:       user.Email,
			ToName:   user.Username,
			Template: key,
			Data:     withRecipient(data, user.Username),
		}

		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, n.emailTimeout)
			defer cancel()

			if err := n.mail.Send(sendCtx, msg); err != nil {
				n.log.Warn("Refund email not delivered",
					zap.Error(err),
					zap.String("template", msg.Template),
					zap.String("refund_id", notice.Refund.ID.String()),
				)
			}
			// delivery is best-effort; other recipients still get theirs
			return nil
		})
	}

	_ = g.Wait()
}

func (n *refundNotifier) publish(ctx context.Context, notice RefundNotice) {
	event := messaging.Event{
		RefundID:    notice.Refund.ID.String(),
		BookingID:   notice.Refund.BookingID.String(),
		ToStatus:    string(notice.Refund.Status),
		ActorID:     notice.ActorID.String(),
		AmountCents: notice.Refund.SettlementCents(),
		Currency:    notice.Refund.Currency,
		OccurredAt:  notice.At,
	}
	if notice.From != nil {
		event.FromStatus = string(*notice.From)
	}

	if err := n.publisher.Publish(ctx, event); err != nil {
		n.log.Warn("Failed to publish refund event",
			zap.Error(err),
			zap.String("routing_key", event.RoutingKey()),
		)
	}
}

func emailData(notice RefundNotice) map[string]string {
	data := map[string]string{
		"BookingReference": notice.Booking.Reference,
		"Amount":           utils.FromCents(notice.Refund.SettlementCents()).StringFixed(2),
		"Currency":         notice.Refund.Currency,
		"Reason":           notice.Refund.Reason,
		"Status":           string(notice.Refund.Status),
	}
	if notice.Property != nil {
		data["PropertyName"] = notice.Property.Name
	}
	if notice.Refund.CustomerNotes != nil {
		data["CustomerNotes"] = *notice.Refund.CustomerNotes
	}
	return data
}

func withRecipient(data map[string]string, name string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["RecipientName"] = name
	return out
}

func notificationText(notice RefundNotice, kind entity.NotificationKind) (string, string) {
	ref := notice.Booking.Reference
	amount := utils.FromCents(notice.Refund.SettlementCents()).StringFixed(2) + " " + notice.Refund.Currency

	if kind == entity.NotificationRefundAlert {
		switch notice.Refund.Status {
		case entity.RefundStatusFailed:
			return "Refund failed", fmt.Sprintf("The refund of %s for booking %s failed and needs manual follow-up.", amount, ref)
		default:
			return "New refund request", fmt.Sprintf("A refund of %s was requested for booking %s.", amount, ref)
		}
	}

	switch notice.Refund.Status {
	case entity.RefundStatusRequested:
		return "Refund requested", fmt.Sprintf("We received your refund request of %s for booking %s.", amount, ref)
	case entity.RefundStatusUnderReview:
		return "Refund under review", fmt.Sprintf("Your refund request for booking %s is being reviewed.", ref)
	case entity.RefundStatusApproved:
		return "Refund approved", fmt.Sprintf("A refund of %s for booking %s was approved.", amount, ref)
	case entity.RefundStatusRejected:
		return "Refund declined", fmt.Sprintf("Your refund request for booking %s was declined.", ref)
	case entity.RefundStatusProcessing:
		return "Refund processing", fmt.Sprintf("Your refund of %s for booking %s is being processed.", amount, ref)
	case entity.RefundStatusCompleted:
		return "Refund completed", fmt.Sprintf("Your refund of %s for booking %s is complete.", amount, ref)
	case entity.RefundStatusFailed:
		return "Refund could not be processed", fmt.Sprintf("We could not process the refund for booking %s. Our team will contact you.", ref)
	case entity.RefundStatusWithdrawn:
		return "Refund withdrawn", fmt.Sprintf("The refund request for booking %s was withdrawn.", ref)
	default:
		return "Refund update", fmt.Sprintf("There is an update on the refund for booking %s.", ref)
	}
}
