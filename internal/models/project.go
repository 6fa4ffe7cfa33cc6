package models

// Project is a row of the proyectos table
type Project struct {
	ID          uint    `gorm:"column:id_proyecto;primaryKey" json:"id_proyecto"`
	Name        string  `gorm:"column:nombre;size:150;not null" json:"nombre"`
	Description *string `gorm:"column:descripcion;type:text" json:"descripcion"`
	StartDate   *Date   `gorm:"column:fecha_inicio" json:"fecha_inicio"`
	EndDate     *Date   `gorm:"column:fecha_fin" json:"fecha_fin"`
	PMID        *uint   `gorm:"column:id_pm" json:"id_pm"`
}

func (Project) TableName() string { return "proyectos" }
