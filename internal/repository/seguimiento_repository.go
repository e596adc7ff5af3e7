package repository

import (
	"context"

	"pedidos-hospital/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Colección de solo inserción: cada cambio de estado deja una fila
// y nunca se edita ni se borra ninguna.
type MongoSeguimientoRepository struct {
	col *mongo.Collection
}

func NewMongoSeguimientoRepository(db *mongo.Database) *MongoSeguimientoRepository {
	return &MongoSeguimientoRepository{col: db.Collection("seguimiento_pedido")}
}

func (m *MongoSeguimientoRepository) Insert(ctx context.Context, s *model.SeguimientoPedido) error {
	_, err := m.col.InsertOne(ctx, s)
	return err
}

// FindAll devuelve todos los seguimientos ordenados por fecha descendente,
// de modo que el primero que coincide por pedido es siempre el más reciente.
func (m *MongoSeguimientoRepository) FindAll(ctx context.Context) ([]model.SeguimientoPedido, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoSeguimientoRepository) FindByPedidoIDs(ctx context.Context, pedidoIDs []string) ([]model.SeguimientoPedido, error) {
	return m.find(ctx, bson.M{"pedido_id": bson.M{"$in": pedidoIDs}})
}

func (m *MongoSeguimientoRepository) find(ctx context.Context, filter bson.M) ([]model.SeguimientoPedido, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: -1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.SeguimientoPedido
	for cur.Next(ctx) {
		var v model.SeguimientoPedido
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
