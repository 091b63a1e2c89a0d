package export

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// parquetRecord is the Parquet row layout: the tabular columns with
// coordinates as optional doubles and the timestamp as epoch millis.
type parquetRecord struct {
	ID         string   `parquet:"id"`
	FirstName  string   `parquet:"first_name"`
	LastName   string   `parquet:"last_name"`
	Phone      string   `parquet:"phone"`
	IDType     string   `parquet:"id_type"`
	IDValue    string   `parquet:"id_value"`
	Birthday   string   `parquet:"birthday"`
	BloodType  string   `parquet:"blood_type"`
	Occupation string   `parquet:"occupation"`
	Education  string   `parquet:"education"`
	CreditCard string   `parquet:"credit_card"`
	Road       string   `parquet:"road"`
	City       string   `parquet:"city"`
	State      string   `parquet:"state"`
	Postcode   string   `parquet:"postcode"`
	Country    string   `parquet:"country"`
	Latitude   *float64 `parquet:"latitude,optional"`
	Longitude  *float64 `parquet:"longitude,optional"`
	IP         string   `parquet:"ip"`
	Timestamp  int64    `parquet:"timestamp"`
	Starred    bool     `parquet:"starred"`
}

func toParquet(r identity.Record) parquetRecord {
	id, a := r.Identity, r.Address
	p := parquetRecord{
		ID:         r.ID,
		FirstName:  id.Name.First,
		LastName:   id.Name.Last,
		Phone:      id.Phone,
		IDType:     id.NationalID.Label,
		IDValue:    id.NationalID.Value,
		Birthday:   id.Birthday,
		BloodType:  id.BloodType,
		Occupation: id.Occupation,
		Education:  id.Education,
		CreditCard: id.CreditCard,
		Road:       a.Road,
		City:       a.City,
		State:      a.State,
		Postcode:   a.Postcode,
		Country:    a.Country,
		IP:         r.NetworkIdentifier,
		Timestamp:  r.CreatedAt,
		Starred:    r.Starred,
	}
	if a.Coordinates != nil {
		lat, lon := a.Coordinates.Latitude, a.Coordinates.Longitude
		p.Latitude, p.Longitude = &lat, &lon
	}
	return p
}

func encodeParquet(records []identity.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := parquet.NewWriter(&buf, parquet.SchemaOf(new(parquetRecord)))

	for _, r := range records {
		if err := writer.Write(toParquet(r)); err != nil {
			return nil, fmt.Errorf("encode parquet: record %s: %w", r.ID, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("encode parquet: %w", err)
	}
	return buf.Bytes(), nil
}
