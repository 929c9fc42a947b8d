package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
)

// Key layout for mirrored records:
//
//	students: PK=SCHOOL#<school_id>  SK=STUDENT#<id>
//	persons:  PK=PERSON              SK=PERSON#<id>
const (
	schoolKeyPrefix  = "SCHOOL#"
	studentKeyPrefix = "STUDENT#"
	personPartition  = "PERSON"
	personKeyPrefix  = "PERSON#"
)

// studentItem is the stored shape of a mirrored student
type studentItem struct {
	PK         string              `dynamodbav:"PK"`
	SK         string              `dynamodbav:"SK"`
	EntityType string              `dynamodbav:"EntityType"`
	StudentID  string              `dynamodbav:"StudentID"`
	SchoolID   string              `dynamodbav:"SchoolID"`
	FirstName  string              `dynamodbav:"FirstName"`
	LastName   string              `dynamodbav:"LastName"`
	Gender     string              `dynamodbav:"Gender"`
	Grade      string              `dynamodbav:"Grade"`
	Birthdate  string              `dynamodbav:"Birthdate"`
	Age        int                 `dynamodbav:"Age"`
	Email      string              `dynamodbav:"Email,omitempty"`
	Addresses  []pickupAddressItem `dynamodbav:"Addresses,omitempty"`
	Parents    []parentItem        `dynamodbav:"Parents,omitempty"`
	Status     string              `dynamodbav:"Status"`
	Version    int                 `dynamodbav:"Version"`
	UpdatedAt  string              `dynamodbav:"UpdatedAt"`
}

// personItem is the stored shape of a mirrored person
type personItem struct {
	PK         string              `dynamodbav:"PK"`
	SK         string              `dynamodbav:"SK"`
	EntityType string              `dynamodbav:"EntityType"`
	PersonID   string              `dynamodbav:"PersonID"`
	FirstName  string              `dynamodbav:"FirstName"`
	LastName   string              `dynamodbav:"LastName"`
	Gender     string              `dynamodbav:"Gender"`
	Birthdate  string              `dynamodbav:"Birthdate"`
	Email      string              `dynamodbav:"Email,omitempty"`
	Addresses  []pickupAddressItem `dynamodbav:"Addresses,omitempty"`
	Status     string              `dynamodbav:"Status"`
	Version    int                 `dynamodbav:"Version"`
	UpdatedAt  string              `dynamodbav:"UpdatedAt"`
}

type pickupAddressItem struct {
	Label       string  `dynamodbav:"Label"`
	Street      string  `dynamodbav:"Street"`
	City        string  `dynamodbav:"City"`
	State       string  `dynamodbav:"State"`
	Zip         string  `dynamodbav:"Zip"`
	Country     string  `dynamodbav:"Country"`
	Latitude    float64 `dynamodbav:"Latitude,omitempty"`
	Longitude   float64 `dynamodbav:"Longitude,omitempty"`
	AMPreferred bool    `dynamodbav:"AMPreferred"`
	PMPreferred bool    `dynamodbav:"PMPreferred"`
}

type parentItem struct {
	ParentID  string `dynamodbav:"ParentID,omitempty"`
	FirstName string `dynamodbav:"FirstName"`
	LastName  string `dynamodbav:"LastName"`
	Relation  string `dynamodbav:"Relation,omitempty"`
	Email     string `dynamodbav:"Email,omitempty"`
	Phone     string `dynamodbav:"Phone,omitempty"`
}

// Mirror implements ports.MirrorStore on DynamoDB. It keeps a
// denormalized copy of the registry for school-partitioned lookups.
type Mirror struct {
	table  *TableClient
	logger *zap.Logger
}

// NewMirror creates a mirror store on the given table
func NewMirror(table *TableClient, logger *zap.Logger) *Mirror {
	return &Mirror{
		table:  table,
		logger: logger,
	}
}

// MirrorStudent writes a student record to the table
func (m *Mirror) MirrorStudent(ctx context.Context, student *entities.Student) error {
	item := newStudentItem(student)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal student item: %w", err)
	}

	return m.table.Put(ctx, av)
}

// MirrorPerson writes a person record to the table
func (m *Mirror) MirrorPerson(ctx context.Context, person *entities.Person) error {
	item := newPersonItem(person)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal person item: %w", err)
	}

	return m.table.Put(ctx, av)
}

// RemoveStudent removes a student record from the table
func (m *Mirror) RemoveStudent(ctx context.Context, schoolID string, id valueobjects.PersonID) error {
	return m.table.Delete(ctx, StudentKey(schoolID, id.String()))
}

// RemovePerson removes a person record from the table
func (m *Mirror) RemovePerson(ctx context.Context, id valueobjects.PersonID) error {
	return m.table.Delete(ctx, PersonKey(id.String()))
}

// StudentsBySchool reads one page of mirrored students for a school,
// newest key first. Used by operational tooling to audit the mirror.
func (m *Mirror) StudentsBySchool(ctx context.Context, schoolID string, limit int32, startKey map[string]types.AttributeValue) ([]studentItem, map[string]types.AttributeValue, error) {
	page, err := m.table.Query(ctx, schoolKeyPrefix+schoolID, QueryOptions{
		Condition:  SortBeginsWith,
		SortValue:  studentKeyPrefix,
		Limit:      limit,
		Descending: true,
		StartKey:   startKey,
	})
	if err != nil {
		return nil, nil, err
	}

	items := make([]studentItem, 0, len(page.Items))
	for _, raw := range page.Items {
		var item studentItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			m.logger.Warn("Skipping unreadable mirror item", zap.Error(err))
			continue
		}
		items = append(items, item)
	}

	return items, page.LastKey, nil
}

// ListMirroredStudents pages through the full mirrored set for a school
func (m *Mirror) ListMirroredStudents(ctx context.Context, schoolID string) ([]ports.MirroredStudent, error) {
	var records []ports.MirroredStudent
	var startKey map[string]types.AttributeValue

	for {
		items, lastKey, err := m.StudentsBySchool(ctx, schoolID, 100, startKey)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			records = append(records, m.mirroredRecord(item))
		}

		if lastKey == nil {
			break
		}
		startKey = lastKey
	}

	return records, nil
}

// MirroredStudents fetches the mirror records for specific students in
// batch reads of up to the BatchGetItem key limit. Students with no
// mirror record are omitted from the result.
func (m *Mirror) MirroredStudents(ctx context.Context, schoolID string, studentIDs []string) ([]ports.MirroredStudent, error) {
	records := make([]ports.MirroredStudent, 0, len(studentIDs))

	for start := 0; start < len(studentIDs); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(studentIDs) {
			end = len(studentIDs)
		}

		keys := make([]Key, 0, end-start)
		for _, id := range studentIDs[start:end] {
			keys = append(keys, StudentKey(schoolID, id))
		}

		items, err := m.table.BatchGet(ctx, keys)
		if err != nil {
			return nil, err
		}

		for _, raw := range items {
			var item studentItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				m.logger.Warn("Skipping unreadable mirror item", zap.Error(err))
				continue
			}
			records = append(records, m.mirroredRecord(item))
		}
	}

	return records, nil
}

func (m *Mirror) mirroredRecord(item studentItem) ports.MirroredStudent {
	updatedAt, err := time.Parse(time.RFC3339, item.UpdatedAt)
	if err != nil {
		m.logger.Warn("Mirror item has unreadable timestamp",
			zap.String("studentID", item.StudentID),
			zap.Error(err),
		)
	}
	return ports.MirroredStudent{
		StudentID: item.StudentID,
		SchoolID:  item.SchoolID,
		Version:   item.Version,
		UpdatedAt: updatedAt,
	}
}

// StudentKey builds the table key for a mirrored student
func StudentKey(schoolID, studentID string) Key {
	return Key{
		PK: schoolKeyPrefix + schoolID,
		SK: studentKeyPrefix + studentID,
	}
}

// PersonKey builds the table key for a mirrored person
func PersonKey(personID string) Key {
	return Key{
		PK: personPartition,
		SK: personKeyPrefix + personID,
	}
}

func newStudentItem(student *entities.Student) studentItem {
	key := StudentKey(student.SchoolID(), student.ID().String())

	return studentItem{
		PK:         key.PK,
		SK:         key.SK,
		EntityType: "STUDENT",
		StudentID:  student.ID().String(),
		SchoolID:   student.SchoolID(),
		FirstName:  student.FirstName(),
		LastName:   student.LastName(),
		Gender:     student.Gender().String(),
		Grade:      student.Grade().String(),
		Birthdate:  student.Birthdate().Format("2006-01-02"),
		Age:        student.Age(),
		Email:      student.Email(),
		Addresses:  newPickupAddressItems(student.Addresses()),
		Parents:    newParentItems(student.Parents()),
		Status:     string(student.Status()),
		Version:    student.Version(),
		UpdatedAt:  student.UpdatedAt().Format(time.RFC3339),
	}
}

func newPersonItem(person *entities.Person) personItem {
	key := PersonKey(person.ID().String())

	return personItem{
		PK:         key.PK,
		SK:         key.SK,
		EntityType: "PERSON",
		PersonID:   person.ID().String(),
		FirstName:  person.FirstName(),
		LastName:   person.LastName(),
		Gender:     person.Gender().String(),
		Birthdate:  person.Birthdate().Format("2006-01-02"),
		Email:      person.Email(),
		Addresses:  newPickupAddressItems(person.Addresses()),
		Status:     string(person.Status()),
		Version:    person.Version(),
		UpdatedAt:  person.UpdatedAt().Format(time.RFC3339),
	}
}

func newPickupAddressItems(addresses []entities.PickupAddress) []pickupAddressItem {
	items := make([]pickupAddressItem, 0, len(addresses))
	for _, addr := range addresses {
		item := pickupAddressItem{
			Label:       addr.Label,
			Street:      addr.Address.Street(),
			City:        addr.Address.City(),
			State:       addr.Address.State(),
			Zip:         addr.Address.Zip(),
			Country:     addr.Address.Country(),
			AMPreferred: addr.AMPreferred,
			PMPreferred: addr.PMPreferred,
		}
		if addr.Location != nil {
			item.Latitude = addr.Location.Latitude()
			item.Longitude = addr.Location.Longitude()
		}
		items = append(items, item)
	}
	return items
}

func newParentItems(parents []entities.Parent) []parentItem {
	items := make([]parentItem, 0, len(parents))
	for _, parent := range parents {
		item := parentItem{
			ParentID:  parent.ParentID,
			FirstName: parent.FirstName,
			LastName:  parent.LastName,
			Relation:  parent.Relation,
			Email:     parent.Email,
		}
		if parent.Phone != nil {
			item.Phone = parent.Phone.Number()
		}
		items = append(items, item)
	}
	return items
}
