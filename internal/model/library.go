// internal/model/library.go
package model

// LibraryOverview はコレクション一覧と現在の設定
type LibraryOverview struct {
	Collections       []CollectionSummary `json:"collections"`
	Selected          []string            `json:"selected"`
	SelectedItemCount int                 `json:"selected_item_count"`
	Mode              ReviewMode          `json:"mode"`
}

// SettingsResponse は設定取得APIのレスポンスDTO
type SettingsResponse struct {
	Mode      ReviewMode `json:"mode"`
	Modes     []string   `json:"modes"`
	Selected  []string   `json:"selected"`
	ItemCount int        `json:"item_count"`
}

// PutModeRequest はモード変更リクエストDTO
type PutModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=front-to-back back-to-front random"`
}

// PutSelectionRequest は選択変更リクエストDTO
type PutSelectionRequest struct {
	Collections []string `json:"collections" validate:"required,dive,required"`
}
