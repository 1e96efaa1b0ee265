package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// fieldErrors is the validation error body: field name to messages, mirroring
// the {field: [message, ...]} contract of the API.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// itemPayload distinguishes absent fields from zero values via pointers so
// presence can be validated after a single decode.
type itemPayload struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Quantity    *int     `json:"quantity"`
	Price       *float64 `json:"price"`
}

var itemFieldTypes = map[string]string{
	"name":        "must be a string",
	"description": "must be a string",
	"quantity":    "must be a non-negative integer",
	"price":       "must be a non-negative number",
}

// parseItemPayload decodes and validates an item body. It returns a non-empty
// error map for field-level problems, or (nil, nil) when the body is not
// decodable JSON at all.
func parseItemPayload(r *http.Request) (*itemPayload, fieldErrors) {
	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			msg, known := itemFieldTypes[typeErr.Field]
			if !known {
				msg = "invalid value"
			}
			return nil, fieldErrors{typeErr.Field: []string{msg}}
		}
		return nil, nil
	}

	errs := fieldErrors{}
	if payload.Name == nil {
		errs.add("name", "this field is required")
	} else if *payload.Name == "" {
		errs.add("name", "this field may not be blank")
	}
	if payload.Description == nil {
		errs.add("description", "this field is required")
	} else if *payload.Description == "" {
		errs.add("description", "this field may not be blank")
	}
	if payload.Quantity == nil {
		errs.add("quantity", "this field is required")
	} else if *payload.Quantity < 0 {
		errs.add("quantity", "must be greater than or equal to 0")
	}
	if payload.Price == nil {
		errs.add("price", "this field is required")
	} else if *payload.Price < 0 {
		errs.add("price", "must be greater than or equal to 0")
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &payload, nil
}
