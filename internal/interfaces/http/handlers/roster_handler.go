package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/infrastructure/roster"
	"scholarship-fund.backend/internal/interfaces/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxRosterBytes bounds an uploaded workbook
const maxRosterBytes = 8 << 20

// ImportRoster registers every row of an uploaded workbook in one bulk call
// POST /api/v1/admin/students/import (multipart field "file")
func (h *RegistryHandler) ImportRoster(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("multipart field \"file\" is required"))
		return
	}
	if header.Size > maxRosterBytes {
		response.Error(c, domainerrors.BadRequest("roster file is too large"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("roster file could not be read"))
		return
	}
	defer f.Close()

	input, err := roster.Parse(f)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.bulkAdd(c, caller, input)
}

// ExportRoster downloads every student in registration order
// GET /api/v1/admin/students/export
func (h *RegistryHandler) ExportRoster(c *gin.Context) {
	students, err := h.registry.GetAllStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	var buf bytes.Buffer
	if err := roster.Export(&buf, students); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
