package employees

import (
	"context"

	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository over two collections: employees and
// their referenced skill-level documents.
type MongoRepository struct {
	employees *mongo.Collection
	skills    *mongo.Collection
}

// NewMongoRepository creates the repository and ensures the unique email index.
func NewMongoRepository(employees, skills *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = employees.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{employees: employees, skills: skills}
}

func (r *MongoRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.employees.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepository) Create(ctx context.Context, e *models.Employee, skill *models.SkillLevel) (string, error) {
	skill.ID = primitive.NewObjectID().Hex()
	if _, err := r.skills.InsertOne(ctx, skill); err != nil {
		return "", err
	}
	e.ID = primitive.NewObjectID().Hex()
	e.SkillID = skill.ID
	if _, err := r.employees.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// roll the orphaned skill back
			_, _ = r.skills.DeleteOne(ctx, bson.M{"_id": skill.ID})
			return "", ErrDuplicateEmail
		}
		return "", err
	}
	return e.ID, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Employee, error) {
	cur, err := r.employees.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Employee{}
	for cur.Next(ctx) {
		var e models.Employee
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return r.populate(ctx, out)
}

// populate loads the referenced skill documents in one query and attaches
// them to their employees.
func (r *MongoRepository) populate(ctx context.Context, list []models.Employee) ([]models.Employee, error) {
	ids := make([]string, 0, len(list))
	for _, e := range list {
		if e.SkillID != "" {
			ids = append(ids, e.SkillID)
		}
	}
	if len(ids) == 0 {
		return list, nil
	}

	cur, err := r.skills.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := map[string]*models.SkillLevel{}
	for cur.Next(ctx) {
		var s models.SkillLevel
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		byID[s.ID] = &s
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		list[i].Skill = byID[list[i].SkillID]
	}
	return list, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee
	if err := r.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.SkillID != "" {
		var s models.SkillLevel
		if err := r.skills.FindOne(ctx, bson.M{"_id": e.SkillID}).Decode(&s); err == nil {
			e.Skill = &s
		}
	}
	return &e, nil
}

func (r *MongoRepository) Update(ctx context.Context, e *models.Employee, skill *models.SkillLevel) error {
	var cur models.Employee
	if err := r.employees.FindOne(ctx, bson.M{"_id": e.ID}).Decode(&cur); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}

	if cur.SkillID != "" {
		set := bson.M{"name": skill.Name, "description": skill.Description}
		if _, err := r.skills.UpdateOne(ctx, bson.M{"_id": cur.SkillID}, bson.M{"$set": set}); err != nil {
			return err
		}
		e.SkillID = cur.SkillID
	}

	set := bson.M{
		"firstName": e.FirstName,
		"lastName":  e.LastName,
		"email":     e.Email,
		"age":       e.Age,
		"DOB":       e.DOB,
		"active":    e.Active,
	}
	if _, err := r.employees.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": set}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	var e models.Employee
	if err := r.employees.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return err
	}
	if e.SkillID != "" {
		if _, err := r.skills.DeleteOne(ctx, bson.M{"_id": e.SkillID}); err != nil {
			return err
		}
	}
	_, err := r.employees.DeleteOne(ctx, bson.M{"_id": e.ID})
	return err
}
