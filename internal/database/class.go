package repository

import (
	"SchoolScan/entity"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetClassByName retrieves a class by its name.
func (m *MongoDB) GetClassByName(ctx context.Context, name string) (*entity.Class, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(classesCollection)

	filter := bson.D{{Key: "name", Value: name}}

	var class entity.Class
	err = collection.FindOne(ctx, filter).Decode(&class)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &class, nil
}

// GetAllClasses retrieves all classes sorted by name.
func (m *MongoDB) GetAllClasses(ctx context.Context) ([]entity.Class, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(classesCollection)

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var classes []entity.Class
	if err = cursor.All(ctx, &classes); err != nil {
		return nil, err
	}

	return classes, nil
}

// GetActiveClasses retrieves all active classes sorted by name.
func (m *MongoDB) GetActiveClasses(ctx context.Context) ([]entity.Class, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(classesCollection)

	filter := bson.D{{Key: "active", Value: true}}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var classes []entity.Class
	if err = cursor.All(ctx, &classes); err != nil {
		return nil, err
	}

	return classes, nil
}

// UpsertClass inserts or updates a class.
func (m *MongoDB) UpsertClass(ctx context.Context, class *entity.Class) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(classesCollection)

	filter := bson.D{{Key: "_id", Value: class.ID}}
	update := bson.D{{Key: "$set", Value: class}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// SetClassActive sets the active status of a class by ID.
func (m *MongoDB) SetClassActive(ctx context.Context, id string, active bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(classesCollection)

	filter := bson.D{{Key: "_id", Value: id}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: active}}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}
