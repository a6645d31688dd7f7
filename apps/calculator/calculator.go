package calculator

import (
	"strconv"

	"github.com/freekieb7/hearth/http"
	"github.com/freekieb7/hearth/validation"
)

var rules = map[string][]string{
	"a":  {"required", "numeric"},
	"b":  {"required", "numeric"},
	"op": {"required", "in:add,sub,mul,div"},
}

// Handler evaluates /calculate?a=X&b=Y&op=add|sub|mul|div and writes the
// result as plain text.
type Handler struct{}

func NewHandler() Handler {
	return Handler{}
}

func (Handler) Handle(req *http.Request, res *http.Response) (bool, error) {
	if req.Path() != "/calculate" {
		return false, nil
	}

	query := req.Query()
	if violations := validation.ValidateValues(query, rules); !violations.IsEmpty() {
		res.WithStatus(http.StatusBadRequest)
		res.WithText(violations.Error())
		return true, nil
	}

	// Validated above.
	a, _ := strconv.ParseFloat(query.Get("a"), 64)
	b, _ := strconv.ParseFloat(query.Get("b"), 64)

	var result float64
	switch query.Get("op") {
	case "add":
		result = a + b
	case "sub":
		result = a - b
	case "mul":
		result = a * b
	case "div":
		if b == 0 {
			res.WithStatus(http.StatusUnprocessableEntity)
			res.WithText("division by zero")
			return true, nil
		}
		result = a / b
	}

	res.WithText(strconv.FormatFloat(result, 'g', -1, 64))
	return true, nil
}
