package monthly

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	RenderYear(view YearView) (string, error)
}

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

// RenderYear writes one row per month followed by total and average rows.
func (t *CsvRendererImpl) RenderYear(view YearView) (string, error) {
	data := make([][]string, 0, MonthsInYear+3)
	data = append(data, []string{"Month", string(view.Kind), "Items"})
	for _, m := range view.Months {
		data = append(data, []string{
			time.Month(m.Month).String(),
			m.Amount.StringFixed(2),
			strconv.Itoa(len(m.Items)),
		})
	}
	data = append(data,
		[]string{"Total", view.Total.StringFixed(2), ""},
		[]string{"Average", view.Average.StringFixed(2), ""},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
