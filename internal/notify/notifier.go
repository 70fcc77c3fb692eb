package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
)

// Sender один канал уведомлений о новом заказе.
type Sender interface {
	Channel() string
	Send(ctx context.Context, order *models.Order) error
}

// Notifier рассылает уведомления о заказе параллельно и в фоне.
// Ошибка или паника одного канала не влияет на остальные.
type Notifier struct {
	senders []Sender
	timeout time.Duration
	metrics *metrics.Registry
	logger  *log.Logger
	wg      sync.WaitGroup
}

// NewNotifier создаёт рассыльщик. timeout ограничивает каждую задачу отдельно.
func NewNotifier(timeout time.Duration, reg *metrics.Registry, logger *log.Logger, senders ...Sender) *Notifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{
		senders: senders,
		timeout: timeout,
		metrics: reg,
		logger:  logger,
	}
}

// Dispatch запускает все каналы и сразу возвращается.
func (n *Notifier) Dispatch(order *models.Order) {
	for _, s := range n.senders {
		n.wg.Add(1)
		go n.run(s, order)
	}
}

// Wait ждёт завершения запущенных задач. Используется при остановке сервиса.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) run(s Sender, order *models.Order) {
	defer n.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	err := safeSend(ctx, s, order)
	n.metrics.ObserveNotification(s.Channel(), err)
	if err != nil {
		n.logger.Printf("%s notification for order %s failed: %v", s.Channel(), order.OrderNumber, err)
		return
	}
	n.logger.Printf("%s notification for order %s sent", s.Channel(), order.OrderNumber)
}

func safeSend(ctx context.Context, s Sender, order *models.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Send(ctx, order)
}
