package repository

import (
	"context"

	"pedidos-hospital/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUsuarioRepository struct {
	col *mongo.Collection
}

func NewMongoUsuarioRepository(db *mongo.Database) *MongoUsuarioRepository {
	return &MongoUsuarioRepository{col: db.Collection("usuarios")}
}

// FindRol devuelve el rol asignado al usuario. El rol se da de alta
// fuera de esta aplicación; si el usuario no está, ErrNotFound.
func (m *MongoUsuarioRepository) FindRol(ctx context.Context, userID string) (string, error) {
	var res model.Usuario
	err := m.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return res.Rol, nil
}

func (m *MongoUsuarioRepository) FindUserIDsByRol(ctx context.Context, rol string) ([]string, error) {
	cur, err := m.col.Find(ctx, bson.M{"rol": rol})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []string
	for cur.Next(ctx) {
		var v model.Usuario
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v.UserID)
	}
	return out, cur.Err()
}
