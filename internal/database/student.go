package repository

import (
	"SchoolScan/entity"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertStudent saves the whole student document, ledger and derived fields
// together, keyed by index number. Last writer wins per document.
func (m *MongoDB) UpsertStudent(ctx context.Context, student *entity.Student) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "index_number", Value: student.IndexNumber}}
	update := bson.M{"$set": student}

	_, err = collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert student: %w", err)
	}
	return nil
}

func (m *MongoDB) GetStudentByIndex(ctx context.Context, indexNumber string) (*entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "index_number", Value: indexNumber}}

	var student entity.Student
	err = collection.FindOne(ctx, filter).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find student: %w", err)
	}

	return &student, nil
}

func (m *MongoDB) GetStudentByUUID(ctx context.Context, uuid string) (*entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "uuid", Value: uuid}}

	var student entity.Student
	err = collection.FindOne(ctx, filter).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find student: %w", err)
	}

	return &student, nil
}

// GetAllStudents retrieves every student sorted by index number.
func (m *MongoDB) GetAllStudents(ctx context.Context) ([]entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "index_number", Value: 1}})

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find students: %w", err)
	}
	defer cursor.Close(ctx)

	var students []entity.Student
	if err = cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("mongodb decode students: %w", err)
	}

	return students, nil
}

// GetActiveStudents retrieves all active students sorted by index number.
func (m *MongoDB) GetActiveStudents(ctx context.Context) ([]entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "active", Value: true}}
	opts := options.Find().SetSort(bson.D{{Key: "index_number", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find students: %w", err)
	}
	defer cursor.Close(ctx)

	var students []entity.Student
	if err = cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("mongodb decode students: %w", err)
	}

	return students, nil
}

// FindStudentsWithOpenRecordsBefore returns students holding at least one
// ledger record dated strictly before day with an entry time and no leave
// time. The sweep re-checks each record in memory after the fetch.
func (m *MongoDB) FindStudentsWithOpenRecordsBefore(ctx context.Context, day time.Time) ([]entity.Student, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "attendance_history", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "date", Value: bson.D{{Key: "$lt", Value: day}}},
		{Key: "entry_time", Value: bson.D{{Key: "$ne", Value: nil}}},
		{Key: "leave_time", Value: nil},
	}}}}}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find open records: %w", err)
	}
	defer cursor.Close(ctx)

	var students []entity.Student
	if err = cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("mongodb decode students: %w", err)
	}

	return students, nil
}

// SetStudentActive sets the active status of a student by index number.
func (m *MongoDB) SetStudentActive(ctx context.Context, indexNumber string, active bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "index_number", Value: indexNumber}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: active}}}}

	_, err = collection.UpdateOne(ctx, filter, update)
	return err
}

// CountActiveStudents returns the count of active students.
func (m *MongoDB) CountActiveStudents(ctx context.Context) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(studentsCollection)

	filter := bson.D{{Key: "active", Value: true}}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}

	return count, nil
}
