package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FlexTime decodes timestamps whether they were stored as BSON dates, RFC 3339
// strings or unix milliseconds. Older storefront clients wrote all three.
type FlexTime struct {
	time.Time
}

// AsFlexTime wraps t.
func AsFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t}
}

// UnmarshalBSONValue accepts every timestamp encoding seen in the orders and
// users collections. Absent or null values decode to the zero time.
func (t *FlexTime) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	switch bt {
	case bsontype.Null, bsontype.Undefined:
		t.Time = time.Time{}
		return nil
	case bsontype.DateTime:
		var dt primitive.DateTime
		if err := bson.UnmarshalValue(bt, data, &dt); err != nil {
			return err
		}
		t.Time = dt.Time().UTC()
		return nil
	case bsontype.Timestamp:
		var ts primitive.Timestamp
		if err := bson.UnmarshalValue(bt, data, &ts); err != nil {
			return err
		}
		t.Time = time.Unix(int64(ts.T), 0).UTC()
		return nil
	case bsontype.Int64:
		var ms int64
		if err := bson.UnmarshalValue(bt, data, &ms); err != nil {
			return err
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	case bsontype.Int32:
		var ms int32
		if err := bson.UnmarshalValue(bt, data, &ms); err != nil {
			return err
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	case bsontype.Double:
		var ms float64
		if err := bson.UnmarshalValue(bt, data, &ms); err != nil {
			return err
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(bt, data, &value); err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return fmt.Errorf("cannot decode %q into FlexTime: %w", value, err)
		}
		t.Time = parsed.UTC()
		return nil
	default:
		return fmt.Errorf("cannot decode %s into FlexTime", bt)
	}
}

// MarshalBSONValue always writes a BSON date, or null for the zero time.
func (t FlexTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if t.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(primitive.NewDateTimeFromTime(t.Time))
}

// FlexAmount decodes money values stored as doubles, integers, decimals or
// numeric strings.
type FlexAmount float64

func (a *FlexAmount) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	switch bt {
	case bsontype.Null, bsontype.Undefined:
		*a = 0
		return nil
	case bsontype.Double:
		var v float64
		if err := bson.UnmarshalValue(bt, data, &v); err != nil {
			return err
		}
		*a = FlexAmount(v)
		return nil
	case bsontype.Int32:
		var v int32
		if err := bson.UnmarshalValue(bt, data, &v); err != nil {
			return err
		}
		*a = FlexAmount(v)
		return nil
	case bsontype.Int64:
		var v int64
		if err := bson.UnmarshalValue(bt, data, &v); err != nil {
			return err
		}
		*a = FlexAmount(v)
		return nil
	case bsontype.Decimal128:
		var v primitive.Decimal128
		if err := bson.UnmarshalValue(bt, data, &v); err != nil {
			return err
		}
		return a.parse(v.String())
	case bsontype.String:
		var v string
		if err := bson.UnmarshalValue(bt, data, &v); err != nil {
			return err
		}
		return a.parse(v)
	default:
		return fmt.Errorf("cannot decode %s into FlexAmount", bt)
	}
}

func (a *FlexAmount) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("cannot decode %q into FlexAmount: %w", raw, err)
	}
	*a = FlexAmount(v)
	return nil
}

// MarshalBSONValue stores the amount as a double.
func (a FlexAmount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(float64(a))
}
