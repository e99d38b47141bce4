package orders

import "github.com/dibba-app/dibba-backend/pkg/db/models"

// Enrich joins user names onto the order. Missing users yield nil names.
func Enrich(doc *models.Document, order models.Order) View {
	return View{
		Order:               order,
		CustomerName:        doc.UserName(order.CustomerID),
		HomemakerName:       doc.UserName(order.HomemakerID),
		DeliveryPartnerName: doc.UserName(order.DeliveryPartnerID),
	}
}
