package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/courselab/courselab-back/internal/db"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CoursesReportHandler godoc
// @Summary      Export the course catalog as a spreadsheet
// @Description  One row per course with the translation for the request language; requires read:course:any
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      403  {object}  map[string]interface{}
// @Router       /admin/reports/courses.xlsx [get]
func CoursesReportHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		courses, err := store.CoursesForReport(c.Request.Context(), RequestLanguage(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		headers := []string{"Course ID", "Owner", "Title", "Level", "Duration (min)", "Updated"}
		for col, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, course := range courses {
			title, level := "", ""
			if len(course.Translations) > 0 {
				title = course.Translations[0].Title
				level = string(course.Translations[0].Level)
			}
			values := []any{
				course.ID,
				course.Owner.Username,
				title,
				level,
				course.Duration,
				course.UpdatedAt.Format("2006-01-02 15:04"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			log.Println("failed to write report:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "courses.xlsx"))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
