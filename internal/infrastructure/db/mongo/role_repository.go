package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/employee-management/internal/core/domain"
)

const collectionRoles = "roles"

type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

type roleDocument struct {
	Name string `bson:"name"`
}

// FindByName is an exact, case-sensitive lookup.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc roleDocument
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrUnknownRole
		}
		return "", storageErr("find role", err)
	}
	return domain.Role(doc.Name), nil
}

// Seed upserts each role; existing documents are left as they are.
func (r *RoleRepository) Seed(ctx context.Context, roles ...domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, role := range roles {
		_, err := r.col.UpdateOne(ctx,
			bson.M{"name": string(role)},
			bson.M{"$setOnInsert": bson.M{"name": string(role)}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return storageErr("seed role "+string(role), err)
		}
	}
	return nil
}

func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storageErr("roles index", err)
	}
	return nil
}
