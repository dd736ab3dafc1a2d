package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"event_id", "recipient_id", "type", "title", "read", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"event_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
			"recipient_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"new_booking_request",
					"booking_accepted",
					"booking_declined",
				},
			},
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"message": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},
			"link": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"read": bson.M{
				"bsonType": "bool",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
