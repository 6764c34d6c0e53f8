package main

import (
	"github.com/shopspring/decimal"

	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// seedIfEmpty siembra el dataset de demostración de la tienda cuando el
// directorio de datos está recién creado, para que la terminal sea usable de
// inmediato. Solo toca colecciones vacías.
func seedIfEmpty(catalogRepo repository.CatalogRepository, customerRepo repository.CustomerRepository, log *logger.Logger) error {
	products, err := catalogRepo.LoadAll()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		if err := catalogRepo.SaveAll(seedProducts()); err != nil {
			return err
		}
		log.Info().Int("products", len(seedProducts())).Msg("catálogo de demostración sembrado")
	}

	customers, err := customerRepo.LoadAll()
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		if err := customerRepo.SaveAll(seedCustomers()); err != nil {
			return err
		}
		log.Info().Int("customers", len(seedCustomers())).Msg("clientes de demostración sembrados")
	}
	return nil
}

func seedProducts() []*entity.Product {
	price := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
	return []*entity.Product{
		{ID: "1", Name: "Basmati Rice (5kg)", Price: price(450.00), Unit: "bags", Stock: 120, Category: "Groceries", Barcode: "8901030411"},
		{ID: "2", Name: "Dishwashing Liquid (1L)", Price: price(120.00), Unit: "bottles", Stock: 35, Category: "Home Care", Barcode: "8901030412"},
		{ID: "3", Name: "Fresh Milk (500ml)", Price: price(30.00), Unit: "pouches", Stock: 200, Category: "Dairy & Bakery", Barcode: "8901030413"},
		{ID: "4", Name: "Atta (10kg)", Price: price(380.00), Unit: "bags", Stock: 42, Category: "Groceries", Barcode: "8901030414"},
		{ID: "5", Name: "Coconut Oil (1L)", Price: price(210.00), Unit: "bottles", Stock: 55, Category: "Cooking Essentials", Barcode: "8901030415"},
		{ID: "6", Name: "Detergent Powder (2kg)", Price: price(195.00), Unit: "packs", Stock: 70, Category: "Home Care", Barcode: "8901030416"},
		{ID: "7", Name: "Potato Chips (Large)", Price: price(50.00), Unit: "packs", Stock: 150, Category: "Snacks", Barcode: "8901030417"},
	}
}

func seedCustomers() []*entity.Customer {
	return []*entity.Customer{
		{ID: "CUST-101", Name: "Rahul Sharma", Phone: "9876543210", TotalSpent: decimal.NewFromInt(12500)},
		{ID: "CUST-102", Name: "Priya Singh", Phone: "9988776655", TotalSpent: decimal.NewFromInt(8750)},
		{ID: "CUST-103", Name: "Amit Kumar", Phone: "9765432109", TotalSpent: decimal.NewFromInt(21000)},
	}
}
