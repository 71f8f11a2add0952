// Package response writes the {code, msg, data} envelope used by every endpoint.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// statusOK is the transport status for every envelope, failures included.
const statusOK = 200

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, statusOK, AsCodeErr(uint32(code), message))
}

// Abort writes an application error and stops the handler chain.
func Abort(c *gin.Context, code int, message string) {
	Error(c, code, message)
	c.Abort()
}
