package rabbitmq

import "github.com/streadway/amqp"

// Notifier — обертка над каналом AMQP, публикующая сообщения
// в exchange уведомлений. Сервисы зависят от нее через свои интерфейсы.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает Notifier поверх готового канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// Publish публикует сообщение с заданным ключом маршрутизации.
func (n *Notifier) Publish(routingKey string, message any) error {
	return PublishMessage(n.ch, "notifications", routingKey, message)
}
