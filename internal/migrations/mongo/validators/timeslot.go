package validators

import "go.mongodb.org/mongo-driver/bson"

var TimeSlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"hall_id",
			"title",
			"recurrence_type",
			"valid_from",
			"status",
			"slot_type",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"hall_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"team_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"day_of_week": bson.M{
				"bsonType": "string",
				"enum": []string{
					"monday",
					"tuesday",
					"wednesday",
					"thursday",
					"friday",
					"saturday",
					"sunday",
				},
			},

			"recurrence_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"weekly",
					"biweekly",
					"monthly",
					"once",
				},
			},

			"valid_from": bson.M{
				"bsonType": "date",
			},

			"valid_until": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"active",
					"inactive",
					"suspended",
				},
			},

			"slot_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"training",
					"game",
					"event",
					"maintenance",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var AssignmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"time_slot_id",
			"team_id",
			"assigned_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"time_slot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"team_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"priority": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"assigned_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
