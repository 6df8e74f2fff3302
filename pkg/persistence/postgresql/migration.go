package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(64) NOT NULL,
				description VARCHAR(256) NOT NULL,
				category VARCHAR(64) NOT NULL,
				sub_category VARCHAR(64) NOT NULL,
				department VARCHAR(64) NOT NULL,
				urgent_sla JSONB,
				high_sla JSONB,
				medium_sla JSONB,
				low_sla JSONB,
				steps JSONB NOT NULL DEFAULT '[]',
				transitions JSONB NOT NULL DEFAULT '[]',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'archived')),
				owner VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_owner ON workflows(owner);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			-- Duplicate checks are case-insensitive on name and on the
			-- (category, sub_category) pair.
			CREATE INDEX idx_workflows_lower_name ON workflows(LOWER(name));
			CREATE INDEX idx_workflows_lower_category
				ON workflows(LOWER(category), LOWER(sub_category));
		`,
	}
}
