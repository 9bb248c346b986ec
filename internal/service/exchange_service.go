// internal/service/exchange_service.go
//go:generate mockery --name ExchangeService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"flashdeck/internal/middleware"
	"flashdeck/internal/model"

	"github.com/xuri/excelize/v2"
)

// ExchangeService はデータセットのエクスポート・インポートを担います。
// エクスポートはID・進捗を含まない可搬形式（name + pairs のみ）で、
// インポート時には必ず新しいペアIDを採番する。
type ExchangeService interface {
	ExportDataset(ctx context.Context, id string) (filename string, data []byte, err error)
	ImportJSON(ctx context.Context, r io.Reader) (*model.Dataset, error)
	ImportExcel(ctx context.Context, r io.Reader, name string) (*model.Dataset, error)
}

type exchangeService struct {
	datasets DatasetService
}

func NewExchangeService(datasets DatasetService) ExchangeService {
	return &exchangeService{datasets: datasets}
}

// exportPayload はエクスポートJSONの形です。内部IDやタイムスタンプは持ち出さない
type exportPayload struct {
	Name  string       `json:"name"`
	Pairs []exportPair `json:"pairs"`
}

type exportPair struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// importPayload はJSONインポートの受け口です。
// pairs は必須（空配列は可だが、欠落やnullは不正として弾く）
type importPayload struct {
	Name  string              `json:"name"`
	Pairs []model.PairRequest `json:"pairs"`
}

// ExportDataset はデータセットを整形済みJSONとして書き出します。
// ファイル名はデータセット名の英数字以外を "_" に潰して小文字化したもの
func (s *exchangeService) ExportDataset(ctx context.Context, id string) (string, []byte, error) {
	dataset, err := s.datasets.GetDataset(ctx, id)
	if err != nil {
		return "", nil, err
	}

	payload := exportPayload{
		Name:  dataset.Name,
		Pairs: make([]exportPair, 0, len(dataset.Pairs)),
	}
	for _, p := range dataset.Pairs {
		payload.Pairs = append(payload.Pairs, exportPair{Term: p.Term, Definition: p.Definition})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		middleware.GetLogger(ctx).Error("Error marshaling dataset for export", "error", err, "dataset_id", id)
		return "", nil, model.ErrInternalServer
	}
	return ExportFilename(dataset.Name), data, nil
}

// ExportFilename はデータセット名をダウンロード用ファイル名に変換します
func ExportFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.ToLower(b.String()) + ".json"
}

// ImportJSON はエクスポート形式のJSONを読み込み、新しいデータセットとして作成します。
// 検証に失敗した場合はストアへ一切書き込まない
func (s *exchangeService) ImportJSON(ctx context.Context, r io.Reader) (*model.Dataset, error) {
	var payload importPayload

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&payload); err != nil {
		return nil, model.NewAppError("VALIDATION_ERROR", "JSONファイルの形式が正しくありません。", "", model.ErrInvalidInput)
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "インポートファイルに name がありません。", "name", model.ErrInvalidInput)
	}
	if payload.Pairs == nil {
		return nil, model.NewAppError("VALIDATION_ERROR", "インポートファイルに pairs 配列がありません。", "pairs", model.ErrInvalidInput)
	}

	// インポート元のIDは信用せず、作成時に再採番させる
	for i := range payload.Pairs {
		payload.Pairs[i].ID = ""
	}
	return s.datasets.CreateDataset(ctx, payload.Name, payload.Pairs)
}

// ImportExcel はExcelブックの先頭シートからデータセットを作成します。
// A列=用語、B列=定義。1行目がヘッダ（"term" など）なら読み飛ばす
func (s *exchangeService) ImportExcel(ctx context.Context, r io.Reader, name string) (*model.Dataset, error) {
	logger := middleware.GetLogger(ctx)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.NewAppError("VALIDATION_ERROR", "Excelファイルを開けませんでした。", "", model.ErrInvalidInput)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("Failed to close Excel workbook", "error", cerr)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, model.NewAppError("VALIDATION_ERROR", "Excelファイルにシートがありません。", "", model.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		logger.Error("Error reading Excel rows", "error", err, "sheet", sheet)
		return nil, model.ErrInternalServer
	}

	pairs := make([]model.PairRequest, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		term := strings.TrimSpace(row[0])
		definition := strings.TrimSpace(row[1])
		if i == 0 && isHeaderRow(term, definition) {
			continue
		}
		pairs = append(pairs, model.PairRequest{Term: term, Definition: definition})
	}

	return s.datasets.CreateDataset(ctx, name, pairs)
}

func isHeaderRow(term, definition string) bool {
	t := strings.ToLower(term)
	d := strings.ToLower(definition)
	return (t == "term" || t == "用語") && (d == "definition" || d == "定義")
}
