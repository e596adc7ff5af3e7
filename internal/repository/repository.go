package repository

import (
	"context"
	"errors"
	"time"

	"pedidos-hospital/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("pedido no encontrado")

// Mongo implementation
type MongoPedidoRepository struct {
	col *mongo.Collection
}

func NewMongoPedidoRepository(db *mongo.Database) *MongoPedidoRepository {
	return &MongoPedidoRepository{col: db.Collection("pedidos")}
}

func (m *MongoPedidoRepository) Save(ctx context.Context, p *model.Pedido) error {
	now := time.Now().UTC()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	filter := bson.M{"pedido_id": p.PedidoID}
	update := bson.M{"$set": p}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoPedidoRepository) FindByPedidoID(ctx context.Context, pedidoID string) (*model.Pedido, error) {
	var res model.Pedido
	err := m.col.FindOne(ctx, bson.M{"pedido_id": pedidoID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoPedidoRepository) UpdateEstado(ctx context.Context, pedidoID, estado string) error {
	filter := bson.M{"pedido_id": pedidoID}
	update := bson.M{
		"$set": bson.M{
			"estado":     estado,
			"updated_at": time.Now().UTC(),
		},
	}

	r, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoPedidoRepository) FindAll(ctx context.Context) ([]model.Pedido, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Pedido
	for cur.Next(ctx) {
		var v model.Pedido
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
