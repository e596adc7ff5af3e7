// setup.go
package rabbit

import (
	"log"

	"pedidos-hospital/internal/service"

	"github.com/rabbitmq/amqp091-go"
)

func SetupConsumers(ch *amqp091.Channel, svc *service.PedidoService) {
	consumer := NewRecetaConsumer(svc)

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		"pedidos_hospital_recetas", // cola exclusiva para este servicio
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("❌ Error declarando queue:", err)
		return
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"",               // fanout ignora routing key
		"receta_emitida", // recetas emitidas por el sistema de prescripción
		false,
		nil,
	)
	if err != nil {
		log.Println("❌ Error binding exchange:", err)
		return
	}

	// 3. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("❌ Error al consumir queue:", err)
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Println("🐰 Suscrito a exchange receta_emitida (fanout)")
}
