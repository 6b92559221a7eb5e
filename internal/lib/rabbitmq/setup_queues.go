package rabbitmq

// QueueConfig — имя очереди и ключ маршрутизации в exchange уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди почтовых уведомлений платформы.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.confirm", RoutingKey: "confirm"},
		{QueueName: "notification.recovery", RoutingKey: "recovery"},
		{QueueName: "notification.offer", RoutingKey: "offer"},
		{QueueName: "notification.review", RoutingKey: "review"},
	}
}
