package mongoclient

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// MakeBsonM turns a struct of optional filters into a bson.M selector.
// Nil pointers and zero values are left out, set pointers are dereferenced
// and fields tagged `bson:"-"` are skipped.
func MakeBsonM(filter interface{}) (bson.M, error) {
	val := reflect.ValueOf(filter)
	if val.Kind() == reflect.Ptr && val.Elem().Kind() == reflect.Struct {
		val = val.Elem()
	}

	bsonM := bson.M{}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)

		tag, err := bsoncodec.DefaultStructTagParser(val.Type().Field(i))
		if err != nil {
			return nil, err
		}
		switch {
		case tag.Skip, !field.CanInterface(), field.IsZero():
			continue
		case field.Kind() == reflect.Ptr:
			bsonM[tag.Name] = field.Elem().Interface()
		default:
			bsonM[tag.Name] = field.Interface()
		}
	}

	return bsonM, nil
}
