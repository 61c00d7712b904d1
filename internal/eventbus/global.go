package eventbus

import (
	"context"
	"sync/atomic"
)

type busHolder struct{ bus EventBus }

// шина процесса; сессии без собственной шины публикуют сюда
var global atomic.Pointer[busHolder]

// Init устанавливает шину процесса. nil отключает публикацию.
func Init(bus EventBus) {
	if bus == nil {
		global.Store(nil)
		return
	}
	global.Store(&busHolder{bus: bus})
}

// Default возвращает шину процесса или nil, если она не задана
func Default() EventBus {
	if h := global.Load(); h != nil {
		return h.bus
	}
	return nil
}

// Publish отправляет событие в шину процесса, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	bus := Default()
	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, ev)
}
