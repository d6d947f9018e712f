package httpkit

import (
	"github.com/gin-gonic/gin"
)

// Operator is the dashboard user behind an authenticated request.
type Operator interface {
	Subject() string
	Email() string
}

type operator struct {
	subject string
	email   string
}

func (o *operator) Subject() string { return o.subject }
func (o *operator) Email() string   { return o.email }

// GetOperator returns the authenticated operator, or nil outside AuthRequired routes.
func GetOperator(c *gin.Context) Operator {
	value, ok := c.Get(ContextOperatorKey)
	if !ok {
		return nil
	}
	op, _ := value.(Operator)
	return op
}
