package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"wordmatch-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type itemList struct {
	Items []domain.SetItem `validate:"required,min=1,dive"`
}

// ValidateItems checks that items can produce a playable board: at least one
// item, every field filled in and ids unique. Problems come back as
// domain.ItemErrors.
func ValidateItems(items []domain.SetItem) error {
	var problems domain.ItemErrors

	if err := validate.Struct(itemList{Items: items}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", domain.ErrMalformedItems, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fieldProblem(fe))
		}
	}

	seen := make(map[string]int, len(items))
	for i, item := range items {
		if item.ID == "" {
			continue
		}
		if first, ok := seen[item.ID]; ok {
			problems = append(problems, domain.ItemError{
				Index:   i,
				Field:   "id",
				Message: fmt.Sprintf("duplicates items[%d]", first),
			})
			continue
		}
		seen[item.ID] = i
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}

func fieldProblem(fe validator.FieldError) domain.ItemError {
	if fe.StructField() == "Items" {
		return domain.ItemError{Index: -1, Field: "items", Message: "must contain at least one item"}
	}
	index := indexOf(fe.StructNamespace())
	field := map[string]string{"ID": "id", "LeftText": "word", "RightText": "meaning"}[fe.StructField()]
	if field == "" {
		field = fe.Field()
	}
	msg := fmt.Sprintf("failed %q", fe.Tag())
	if fe.Tag() == "required" {
		msg = "is required"
	}
	return domain.ItemError{Index: index, Field: field, Message: msg}
}

// indexOf extracts N from a namespace like "itemList.Items[N].ID".
func indexOf(namespace string) int {
	open := strings.IndexByte(namespace, '[')
	end := strings.IndexByte(namespace, ']')
	if open < 0 || end < open {
		return -1
	}
	n, err := strconv.Atoi(namespace[open+1 : end])
	if err != nil {
		return -1
	}
	return n
}
