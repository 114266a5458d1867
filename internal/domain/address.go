package domain

type ShippingAddress struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Country        string `json:"country"`
	MobileNumber   string `json:"mobile_number"`
	WhatsappNumber string `json:"whatsapp_number"`
	Pincode        string `json:"pincode,omitempty"`
}
