package rabbitmq

// QueueConfig описывает очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ExerciseQueues возвращает очереди для событий об отмеченных упражнениях.
func ExerciseQueues(routingKey string) []QueueConfig {
	return []QueueConfig{
		{QueueName: "exercises.recorded", RoutingKey: routingKey},
	}
}
