package worldcupmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type seedBurger struct {
	name, nameEn, brand, brandEn, description, descriptionEn, category string
}

var seedBurgers = []seedBurger{
	{"싸이버거", "Cy Burger", "맘스터치", "Mom's Touch", "바삭한 치킨 패티의 전설", "Legendary crispy chicken patty", "korean"},
	{"와퍼", "Whopper", "버거킹", "Burger King", "불에 직접 구운 100% 순 쇠고기 패티", "Flame-grilled 100% beef patty", "classic"},
	{"빅맥", "Big Mac", "맥도날드", "McDonald's", "두 장의 순 쇠고기 패티와 특별한 빅맥 소스", "Two beef patties with special Big Mac sauce", "classic"},
	{"불고기버거", "Bulgogi Burger", "롯데리아", "Lotteria", "달콤한 불고기 소스의 한국 대표 버거", "Sweet bulgogi sauce Korean classic", "korean"},
	{"쉑버거", "ShackBurger", "쉐이크쉑", "Shake Shack", "앵거스 비프 패티와 쉑소스", "Angus beef patty with ShackSauce", "premium"},
	{"치즈버거", "Cheeseburger", "파이브가이즈", "Five Guys", "신선한 재료로 만든 수제 치즈버거", "Fresh handmade cheeseburger", "premium"},
	{"NBB 시그니처", "NBB Signature", "노브랜드버거", "No Brand Burger", "가성비 최고의 시그니처 버거", "Best value signature burger", "korean"},
	{"다운타우너 클래식", "Downtowner Classic", "다운타우너", "Downtowner", "서울 대표 수제버거", "Seoul's signature handmade burger", "handmade"},
	{"버거보이 스매시", "Burger Boy Smash", "버거보이", "Burger Boy", "스매시 패티의 정석", "The standard of smash patties", "handmade"},
	{"매드포갈릭 버거", "Mad for Garlic Burger", "매드포갈릭", "Mad for Garlic", "마늘 소스가 일품인 수제버거", "Handmade burger with garlic sauce", "handmade"},
	{"슈퍼두퍼 치즈", "Super Duper Cheese", "슈퍼두퍼", "Super Duper", "더블 치즈의 진한 맛", "Rich double cheese flavor", "handmade"},
	{"쿼터파운더 치즈", "Quarter Pounder", "맥도날드", "McDonald's", "두툼한 패티와 치즈의 조합", "Thick patty and cheese combo", "classic"},
	{"통새우 와퍼", "Whole Shrimp Whopper", "버거킹", "Burger King", "통새우가 들어간 프리미엄 와퍼", "Premium whopper with whole shrimp", "classic"},
	{"리치 치즈버거", "Rich Cheeseburger", "맘스터치", "Mom's Touch", "진한 치즈소스의 버거", "Burger with rich cheese sauce", "korean"},
	{"브루클린 버거", "Brooklyn Burger", "브루클린 더 버거 조인트", "Brooklyn The Burger Joint", "뉴욕 스타일 수제버거", "New York style handmade burger", "handmade"},
	{"스모크하우스 버거", "Smokehouse Burger", "자니로켓츠", "Johnny Rockets", "스모키한 풍미의 클래식 버거", "Smoky flavored classic burger", "premium"},
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Printf("Seeding %d burgers...\n", len(seedBurgers))

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, b := range seedBurgers {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO competitors (name, name_en, brand, brand_en, description, description_en, category)
					VALUES (?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT (name, brand) DO NOTHING;
				`, b.name, b.nameEn, b.brand, b.brandEn, b.description, b.descriptionEn, b.category); err != nil {
					return fmt.Errorf("failed to seed %s: %w", b.nameEn, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing seeded burgers...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, b := range seedBurgers {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM competitors WHERE name = ? AND brand = ?;`, b.name, b.brand); err != nil {
					return fmt.Errorf("failed to remove %s: %w", b.nameEn, err)
				}
			}
			return nil
		})
	})
}
