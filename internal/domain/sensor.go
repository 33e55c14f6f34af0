package domain

type Sensor struct {
	ID       SensorID `gorm:"primaryKey;autoIncrement:false" db:"id" json:"id"`
	Name     string   `gorm:"type:text;not null" db:"name" json:"name"`
	Location string   `gorm:"type:text;not null" db:"location" json:"location"`
	Owner    string   `gorm:"type:text;not null;index:idx_sensors_owner" db:"owner" json:"owner"`

	// sensor.owner -> users.username
	OwnerUser *User `gorm:"foreignKey:Owner;references:Username;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Sensor) TableName() string { return "sensors" }
