package mongo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/employee-management/internal/core/domain"
)

const (
	collectionEmployees = "employees"
	collectionCounters  = "counters"
	employeeSequence    = "employees"
)

// EmployeeRepository stores one document per employee keyed by an int64 _id
// drawn from a counter document.
type EmployeeRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{
		col:      db.Collection(collectionEmployees),
		counters: db.Collection(collectionCounters),
	}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	e.ID = id

	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return storageErr("insert employee", err)
	}
	return nil
}

// nextID atomically increments the employee sequence.
func (r *EmployeeRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": employeeSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, storageErr("next employee id", err)
	}
	return counter.Seq, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e domain.Employee
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, storageErr("find employee", err)
	}
	return &e, nil
}

// Replace swaps the whole document in one write.
func (r *EmployeeRepository) Replace(ctx context.Context, e *domain.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return storageErr("replace employee", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr("delete employee", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) List(ctx context.Context, criteria domain.FilterCriteria) ([]domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, buildFilter(criteria), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr("list employees", err)
	}
	defer cursor.Close(ctx)

	employees := []domain.Employee{}
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, storageErr("decode employees", err)
	}
	return employees, nil
}

func (r *EmployeeRepository) CountBy(ctx context.Context, field domain.GroupField) ([]domain.GroupedCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Aggregate(ctx, groupPipeline(field))
	if err != nil {
		return nil, storageErr("aggregate employees", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storageErr("decode groups", err)
	}

	groups := make([]domain.GroupedCount, len(rows))
	for i, row := range rows {
		groups[i] = domain.GroupedCount{Key: row.Key, Count: row.Count}
	}
	return groups, nil
}

// buildFilter translates criteria into a query. Substring matches use a
// quoted regex so user input is never interpreted as a pattern.
func buildFilter(c domain.FilterCriteria) bson.M {
	filter := bson.M{}
	if c.Department != nil {
		filter["department"] = bson.M{"$regex": regexp.QuoteMeta(*c.Department)}
	}
	if c.JobTitle != nil {
		filter["job_title"] = bson.M{"$regex": regexp.QuoteMeta(*c.JobTitle)}
	}
	if c.MinSalary != nil {
		filter["salary"] = bson.M{"$gte": *c.MinSalary}
	}
	return filter
}

// groupPipeline counts employees per verbatim field value. Missing and null
// values collapse into the "" group.
func groupPipeline(field domain.GroupField) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + string(field), ""}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
