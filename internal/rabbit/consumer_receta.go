package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"pedidos-hospital/internal/service"
)

type RecetaConsumer struct {
	Service *service.PedidoService
}

func NewRecetaConsumer(s *service.PedidoService) *RecetaConsumer {
	return &RecetaConsumer{Service: s}
}

// Mensaje que publica el sistema de prescripción cuando emite una receta.
type RecetaEmitidaMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		Habitacion  string `json:"habitacion"`
		Medicamento string `json:"medicamento"`
	} `json:"message"`
}

func (c *RecetaConsumer) Handle(msg []byte) error {

	log.Println("[Rabbit] Evento recibido: receta_emitida")

	var event RecetaEmitidaMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Println("Error parseando mensaje:", err)
		return err
	}

	pedido, err := c.Service.CrearPedido(
		context.Background(),
		event.Message.Habitacion,
		event.Message.Medicamento,
	)

	if errors.Is(err, service.ErrHabitacionNoExiste) {
		// Receta con habitación desconocida: se descarta, no hay retry.
		log.Println("❌ Receta descartada, habitación desconocida:", event.Message.Habitacion)
		return err
	}
	if err != nil {
		log.Println("❌ Error creando pedido desde receta:", err)
		return err
	}

	log.Println("✔ Pedido creado desde receta:", pedido.PedidoID)
	return nil
}
