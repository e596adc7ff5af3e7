package repository

import (
	"context"

	"pedidos-hospital/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUbicacionRepository struct {
	col *mongo.Collection
}

func NewMongoUbicacionRepository(db *mongo.Database) *MongoUbicacionRepository {
	return &MongoUbicacionRepository{col: db.Collection("ubicaciones")}
}

// ExistsHabitacion comprueba que la habitación está dada de alta.
// Se usa al crear un pedido.
func (m *MongoUbicacionRepository) ExistsHabitacion(ctx context.Context, habitacion string) (bool, error) {
	err := m.col.FindOne(ctx, bson.M{"habitacion": habitacion}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *MongoUbicacionRepository) FindAll(ctx context.Context) ([]model.Ubicacion, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Ubicacion
	for cur.Next(ctx) {
		var v model.Ubicacion
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
