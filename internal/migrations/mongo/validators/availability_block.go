package validators

import "go.mongodb.org/mongo-driver/bson"

const datePattern = `^\d{4}-\d{2}-\d{2}$`

var AvailabilityBlockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"sitter_id", "date", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"sitter_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},
			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
